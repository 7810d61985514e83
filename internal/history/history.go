// SPDX-License-Identifier: MPL-2.0

// Package history persists the last-invocation memory.
//
// Two small text artifacts live in the per-user configuration directory:
// a single-line file holding the absolute module path of the most recent
// invocation, and an append-only history file holding one fully qualified
// member identity per line. "Repeat last" reads the path file and the final
// non-blank history line; it never manages the load context lifecycle
// itself, it just re-enters the loader pipeline.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// lastModuleFile holds the absolute module path, overwritten on every
	// successful dispatch.
	lastModuleFile = "lastmodule"
	// historyFile is the append-only log of fully qualified member
	// identities, one per line.
	historyFile = "history"
)

// ErrNoHistory is returned by Last when nothing has been recorded yet.
var ErrNoHistory = errors.New("no recorded invocation")

type (
	// Record identifies one successfully dispatched command: which module
	// file it came from and which member was invoked. It has no expiry
	// and survives process restarts.
	Record struct {
		ModulePath             string
		FullyQualifiedTypeName string
		MemberName             string
	}

	// Store reads and writes the history artifacts in one directory.
	Store struct {
		dir string
	}
)

// MemberIdentity returns the persisted line form of the record's member.
func (r Record) MemberIdentity() string {
	return r.FullyQualifiedTypeName + "." + r.MemberName
}

// parseMemberIdentity splits a persisted identity line back into its type
// and member parts. The member is everything after the last dot.
func parseMemberIdentity(line string) (fullyQualifiedTypeName, memberName string, ok bool) {
	i := strings.LastIndexByte(line, '.')
	if i <= 0 || i == len(line)-1 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// NewStore returns a store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Record persists a successful dispatch: the module path file is
// overwritten and the member identity is appended to the history log.
func (s *Store) Record(rec Record) error {
	if rec.ModulePath == "" || rec.FullyQualifiedTypeName == "" || rec.MemberName == "" {
		return fmt.Errorf("incomplete invocation record: %+v", rec)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history directory %s: %w", s.dir, err)
	}

	pathFile := filepath.Join(s.dir, lastModuleFile)
	if err := os.WriteFile(pathFile, []byte(rec.ModulePath+"\n"), 0o644); err != nil {
		return fmt.Errorf("write last module path: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, historyFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(rec.MemberIdentity() + "\n"); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// Last returns the most recently recorded invocation: the single line of
// the module path file plus the final non-blank line of the history log.
func (s *Store) Last() (Record, error) {
	pathBytes, err := os.ReadFile(filepath.Join(s.dir, lastModuleFile))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrNoHistory, err)
	}
	modulePath := strings.TrimSpace(string(pathBytes))
	if modulePath == "" {
		return Record{}, ErrNoHistory
	}

	historyBytes, err := os.ReadFile(filepath.Join(s.dir, historyFile))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrNoHistory, err)
	}

	identity := lastNonBlankLine(string(historyBytes))
	if identity == "" {
		return Record{}, ErrNoHistory
	}

	typeName, memberName, ok := parseMemberIdentity(identity)
	if !ok {
		return Record{}, fmt.Errorf("unparseable history entry %q", identity)
	}

	return Record{
		ModulePath:             modulePath,
		FullyQualifiedTypeName: typeName,
		MemberName:             memberName,
	}, nil
}

// lastNonBlankLine returns the final line with non-whitespace content.
func lastNonBlankLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
