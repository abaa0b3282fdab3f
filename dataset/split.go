package dataset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
)

// Split holds the feature and label tables of a train/test split.
type Split struct {
	XTrain frame.Table
	XTest  frame.Table
	YTrain frame.Table
	YTest  frame.Table
}

// TrainTestSplit は行をシャッフルして学習用とテスト用に分割する
//
// パラメータ:
//   - t: 特徴量とターゲット列を含むテーブル
//   - target: ターゲット列の名前
//   - testFraction: テストに回す行の割合 (0 < testFraction < 1)、切り上げ
//   - seed: シャッフルの乱数シード。同じシードなら同じ分割になる
//
// 各分割内の行は元の順序を保つ。
func TrainTestSplit(t frame.Table, target string, testFraction float64, seed int64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, errors.NewValidationError("test_fraction", "must be in (0, 1)", testFraction)
	}
	y, err := t.Select(target)
	if err != nil {
		return Split{}, err
	}
	x, err := t.Drop(target)
	if err != nil {
		return Split{}, err
	}

	n := t.Nrow()
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 || nTest >= n {
		return Split{}, errors.Wrapf(errors.ErrInsufficientData,
			"dataset: %d rows cannot be split with test fraction %g", n, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testIdx := append([]int(nil), perm[:nTest]...)
	trainIdx := append([]int(nil), perm[nTest:]...)
	sort.Ints(testIdx)
	sort.Ints(trainIdx)

	return Split{
		XTrain: x.Take(trainIdx),
		XTest:  x.Take(testIdx),
		YTrain: y.Take(trainIdx),
		YTest:  y.Take(testIdx),
	}, nil
}
