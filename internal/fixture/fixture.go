// Package fixture loads program test fixtures and checks program runners
// against them.
//
// A fixture is a program file NAME.bf next to a NAME.test JSON file like:
//
//	{"feed-in": "input bytes", "expect-out": "expected output bytes"}
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// Fixture is one program along with its input and expected output.
type Fixture struct {
	Name   string
	Source []byte
	Input  string
	Expect string
}

func (fx Fixture) String() string { return fx.Name }

type expectation struct {
	FeedIn    string `json:"feed-in"`
	ExpectOut string `json:"expect-out"`
}

// Load loads all fixtures from a directory.
func Load(dir string) ([]Fixture, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads all fixtures from a directory within fsys, sorted by name.
// Programs without a sibling .test file are skipped.
func LoadFS(fsys fs.FS, dir string) ([]Fixture, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.bf"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	fixtures := make([]Fixture, 0, len(names))
	for _, name := range names {
		fx, err := loadFixture(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return fixtures, err
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

func loadFixture(fsys fs.FS, name string) (fx Fixture, err error) {
	testName := strings.TrimSuffix(name, ".bf") + ".test"
	test, err := fs.ReadFile(fsys, testName)
	if err != nil {
		return fx, err
	}

	var exp expectation
	if err := json.Unmarshal(test, &exp); err != nil {
		return fx, fmt.Errorf("invalid fixture %v: %w", testName, err)
	}

	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fx, err
	}

	fx.Name = strings.TrimSuffix(path.Base(name), ".bf")
	fx.Source = src
	fx.Input = exp.FeedIn
	fx.Expect = exp.ExpectOut
	return fx, nil
}
