// Package metrics scores binary classifiers.
package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// logLossEps は log(0) を避けるための確率のクリップ幅
const logLossEps = 1e-15

// Accuracy は正解率を計算する
//
// ラベルは完全一致で比較する (多クラスも可)。
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率 (1 - Accuracy) を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// BinaryLogLoss は二値分類の平均対数損失を計算する
//
// パラメータ:
//   - yTrue: 0/1 の正解ラベル
//   - yPred: 陽性クラスの予測確率 ([eps, 1-eps] にクリップされる)
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yPred.AtVec(i), logLossEps), 1-logLossEps)
		y := yTrue.AtVec(i)
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(n), nil
}

// AUC は ROC 曲線下面積を計算する
//
// 同点のスコアには平均順位を割り当てる (Mann-Whitney U)。正解ラベルが
// 単一クラスのみの場合は AUC が定義されないため、UndefinedMetricWarning を
// 発行して 0.5 を返す。
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b]) })

	var rankSumPos float64
	var nPos, nNeg int
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(idx[j+1]) == yScore.AtVec(idx[i]) {
			j++
		}
		// ranks are 1-based; ties share the average rank
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(idx[k]) == 1 {
				rankSumPos += avgRank
				nPos++
			} else {
				nNeg++
			}
		}
		i = j + 1
	}

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5))
		return 0.5, nil
	}
	u := rankSumPos - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// Report bundles the metrics logged after training.
type Report struct {
	Accuracy  float64
	ErrorRate float64
	LogLoss   float64
	AUC       float64
}

// Evaluate computes a Report from 0/1 labels, predicted labels and predicted
// probabilities.
func Evaluate(yTrue []float64, yPred []int, proba []float64) (Report, error) {
	if len(yTrue) == 0 {
		return Report{}, errors.NewValueError("Evaluate", "empty vector")
	}
	truth := mat.NewVecDense(len(yTrue), yTrue)
	predF := make([]float64, len(yPred))
	for i, v := range yPred {
		predF[i] = float64(v)
	}
	if len(predF) == 0 || len(proba) == 0 {
		return Report{}, errors.NewValueError("Evaluate", "empty predictions")
	}

	var r Report
	var err error
	predVec := mat.NewVecDense(len(predF), predF)
	if r.Accuracy, err = Accuracy(truth, predVec); err != nil {
		return Report{}, err
	}
	if r.ErrorRate, err = ClassificationError(truth, predVec); err != nil {
		return Report{}, err
	}
	probaVec := mat.NewVecDense(len(proba), proba)
	if r.LogLoss, err = BinaryLogLoss(truth, probaVec); err != nil {
		return Report{}, err
	}
	if r.AUC, err = AUC(truth, probaVec); err != nil {
		return Report{}, err
	}
	return r, nil
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func checkBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "y_true must contain only 0 and 1")
		}
	}
	return nil
}
