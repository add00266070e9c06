package database

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Migration is one numbered pair of up/down SQL scripts.
type Migration struct {
	Version  int
	Name     string
	Up       string
	Down     string
	Checksum string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	embeddedOnce       sync.Once
	embeddedMigrations []Migration
	embeddedErr        error
)

// Migrations returns the migrations compiled into the binary, ordered by version.
func Migrations() ([]Migration, error) {
	embeddedOnce.Do(func() {
		embeddedMigrations, embeddedErr = LoadMigrations(migrationFS, "migrations")
	})
	return embeddedMigrations, embeddedErr
}

// LoadMigrations reads NNNNNN_name.up.sql / .down.sql pairs from dir. A file
// with a malformed name, a missing down script or a duplicate version is an error.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]Migration{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		prefix, label, ok := strings.Cut(base, "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil || version <= 0 || label == "" {
			return nil, fmt.Errorf("migration %q: expected NNNNNN_name.up.sql", name)
		}
		if prev, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("migration %q: version %d already used by %s", name, version, prev)
		}

		up, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}

		sum := sha256.Sum256(up)
		byVersion[version] = Migration{
			Version:  version,
			Name:     label,
			Up:       string(up),
			Down:     string(down),
			Checksum: hex.EncodeToString(sum[:]),
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
