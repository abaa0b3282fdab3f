// Package storage resolves artifact locations and saves and loads trained
// models and processed tables.
//
// Models are stored as gob blobs under the models root; processed tables are
// stored as CSV under the processed root. Both roots come from Config and can
// be replaced wholesale with a custom PathResolver.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/core/model"
	"github.com/YuminosukeSato/leadconv/dataset"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
)

// Default roots, relative to the working directory.
const (
	DefaultModelsDir    = "models"
	DefaultProcessedDir = "data/processed"
)

// Config holds the artifact roots.
type Config struct {
	ModelsDir    string `yaml:"models_dir" envconfig:"MODELS_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
}

// PathResolver maps artifact names to filesystem paths. Implementations must
// be deterministic and must not touch the filesystem.
type PathResolver interface {
	ModelPath(name string) string
	ProcessedDataPath(name string) string
}

// DirResolver joins names onto fixed roots.
type DirResolver struct {
	ModelsDir    string
	ProcessedDir string
}

// ModelPath implements PathResolver.
func (r DirResolver) ModelPath(name string) string {
	return filepath.Join(r.ModelsDir, name)
}

// ProcessedDataPath implements PathResolver.
func (r DirResolver) ProcessedDataPath(name string) string {
	return filepath.Join(r.ProcessedDir, name)
}

// Store は学習済みモデルと前処理済みデータの永続化を担う
type Store struct {
	resolver PathResolver
	logger   log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithResolver replaces the Config-based path strategy.
func WithResolver(r PathResolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithLogger sets the logger used for save and load events.
func WithLogger(l log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New は Store を作成する
//
// 空のディレクトリ設定は DefaultModelsDir / DefaultProcessedDir で補われる。
//
// 使用例:
//
//	store := storage.New(storage.Config{ModelsDir: "artifacts/models"})
//	path, err := store.SaveModel(clf, "lead_model_gbdt.gob")
func New(cfg Config, opts ...Option) *Store {
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = DefaultModelsDir
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = DefaultProcessedDir
	}
	s := &Store{
		resolver: DirResolver{ModelsDir: cfg.ModelsDir, ProcessedDir: cfg.ProcessedDir},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("storage")
	}
	return s
}

// ModelPath returns where the named model lives. It does not check existence.
func (s *Store) ModelPath(name string) string {
	return s.resolver.ModelPath(name)
}

// ProcessedDataPath returns where the named processed table lives.
// It does not check existence.
func (s *Store) ProcessedDataPath(name string) string {
	return s.resolver.ProcessedDataPath(name)
}

type saveOptions struct {
	dir string
}

// SaveOption adjusts a single SaveModel call.
type SaveOption func(*saveOptions)

// InDir saves into dir instead of the resolver's models root.
func InDir(dir string) SaveOption {
	return func(o *saveOptions) { o.dir = dir }
}

// SaveModel はモデルを gob 形式で保存し、保存先の絶対パスを返す
//
// パラメータ:
//   - m: 保存するモデル（公開フィールドのみが保存される）
//   - name: ファイル名
//   - opts: InDir で保存先ディレクトリを上書きできる
//
// 戻り値:
//   - string: 保存先の絶対パス
//   - error: ディレクトリ作成・エンコード・書き込みのいずれかに失敗した場合
//
// 保存先ディレクトリは必要に応じて作成される。既存のファイルは警告なしに
// 上書きされる。書き込みは一時ファイル経由で行い、途中で失敗しても
// 部分的なファイルは残らない。
func (s *Store) SaveModel(m any, name string, opts ...SaveOption) (string, error) {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}
	path := s.ModelPath(name)
	if o.dir != "" {
		path = filepath.Join(o.dir, name)
	}

	abs, err := s.write(path, func(w io.Writer) error { return model.Encode(w, m) })
	if err != nil {
		return "", errors.NewModelError("SaveModel", "persist model", err)
	}
	s.logger.Info("Model saved",
		log.OperationKey, log.OperationSave,
		log.ArtifactKey, name,
		log.PathKey, abs,
	)
	return abs, nil
}

// LoadModel decodes the named model into dst, which must be a pointer.
// A missing file yields ArtifactNotFoundError and nothing is created.
func (s *Store) LoadModel(name string, dst any) error {
	path := s.ModelPath(name)
	f, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := model.Decode(f, dst); err != nil {
		return errors.NewModelError("LoadModel", "decode "+path, err)
	}
	s.logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.ArtifactKey, name,
		log.PathKey, path,
	)
	return nil
}

// SaveData writes t as CSV to the processed root and returns the absolute
// path. Parent directories are created as needed.
func (s *Store) SaveData(t frame.Table, name string) (string, error) {
	abs, err := s.write(s.ProcessedDataPath(name), func(w io.Writer) error {
		return dataset.WriteCSV(w, t)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Data saved",
		log.OperationKey, log.OperationSave,
		log.ArtifactKey, name,
		log.PathKey, abs,
		log.SamplesKey, t.Nrow(),
		log.FeaturesKey, t.Ncol(),
	)
	return abs, nil
}

// LoadData reads a table previously written by SaveData.
func (s *Store) LoadData(name string) (frame.Table, error) {
	path := s.ProcessedDataPath(name)
	f, err := open(path)
	if err != nil {
		return frame.Table{}, err
	}
	defer f.Close()

	t, err := dataset.ReadCSV(f)
	if err != nil {
		return frame.Table{}, errors.Wrapf(err, "storage: load %s", path)
	}
	s.logger.Debug("Data loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.SamplesKey, t.Nrow(),
	)
	return t, nil
}

func (s *Store) write(path string, fn func(io.Writer) error) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "storage: resolve %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrapf(err, "storage: create directory for %s", abs)
	}
	if err := model.WriteFileAtomic(abs, fn); err != nil {
		return "", err
	}
	return abs, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewArtifactNotFoundError(path)
		}
		return nil, errors.Wrapf(err, "storage: open %s", path)
	}
	return f, nil
}
