package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hhhapz/swiftbook/topic"
	"github.com/pkg/errors"
)

var (
	ErrInvalidKey = errors.New("invalid topic key")
	ErrNotFound   = errors.New("no scraped content")
)

// Store reads and writes scraped pages as <dir>/<key>.json. There is no
// in-memory cache; every read goes to disk.
type Store struct {
	dir      string
	validate *validator.Validate
	log      *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:      dir,
		validate: validator.New(),
		log:      logger,
	}
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a topic is stored in.
func (s *Store) Path(key string) (string, error) {
	if !topic.KeyPattern.MatchString(key) {
		return "", errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Save writes c as indented JSON, creating the directory if needed. The file
// is written under a temporary name and renamed into place, so readers see
// either the old or the new document. It returns the number of bytes
// written.
func (s *Store) Save(key string, c *Content) (int, error) {
	path, err := s.Path(key)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("could not save %s: no content", key)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return 0, errors.Wrap(err, "could not encode content")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "could not create content directory")
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.json")
	if err != nil {
		return 0, errors.Wrap(err, "could not create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, errors.Wrapf(err, "could not write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrapf(err, "could not write %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, errors.Wrapf(err, "could not move content into %s", path)
	}

	return len(data), nil
}

// Load reads the stored page for key.
func (s *Store) Load(key string) (*Content, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	if err := s.validate.Struct(c); err != nil {
		return nil, errors.Wrapf(err, "malformed content in %s", path)
	}
	return &c, nil
}

// Get is Load for callers that treat every failure as a miss. Errors are
// logged and nil is returned.
func (s *Store) Get(key string) *Content {
	c, err := s.Load(key)
	if err != nil {
		s.log.Warn("could not load scraped content", "topic", key, "err", err)
		return nil
	}
	return c
}

// Keys lists the topics with a stored page, sorted.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not list content directory")
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if topic.KeyPattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether a page is stored for key.
func (s *Store) Has(key string) bool {
	path, err := s.Path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
