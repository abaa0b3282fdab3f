package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/leadconv/pkg/errors"
)

// Encode はモデルを gob 形式で io.Writer に書き込む
//
// パラメータ:
//   - w: 書き込み先
//   - model: 保存するモデル（公開フィールドのみがシリアライズされる）
//
// 戻り値:
//   - error: エンコードに失敗した場合のエラー
func Encode(w io.Writer, model any) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// Decode は io.Reader から gob 形式のモデルを読み込む
//
// パラメータ:
//   - r: 読み込み元
//   - model: 読み込み先のモデル（ポインタ）
//
// 戻り値:
//   - error: デコードに失敗した場合のエラー
func Decode(r io.Reader, model any) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// WriteFileAtomic writes via a temp file in the target directory followed by
// rename, so readers never observe a partial file. The directory must exist.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	// CreateTemp uses 0600; artifacts get the usual 0644.
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to set file mode")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "failed to rename into %s", path)
	}
	committed = true
	return nil
}
