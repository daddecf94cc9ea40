// Copyright 2025 torrentctl
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metainfo extracts summary information from .torrent files.
//
// Only the fields a user needs before submitting a torrent to a daemon are
// interpreted: the display name, the total payload size and the file
// count, all taken from the "info" dictionary. Announce URLs, piece
// hashes, creation dates and every other key are skipped structurally
// without being materialized.
package metainfo

import (
	"unicode/utf8"

	"github.com/torrentctl/transmission-remote/bencode"
)

// Summary describes the payload of a .torrent file.
type Summary struct {
	// Name is the display name from info.name, decoded as UTF-8 with a
	// Latin-1 fallback for torrents created by pre-Unicode clients.
	Name string

	// TotalSize is info.length for a single-file torrent, or the sum of
	// info.files[].length for a multi-file torrent.
	TotalSize int64

	// FileCount is 1 for a single-file torrent, otherwise the number of
	// entries in info.files. Always >= 1 for a torrent that summarizes.
	FileCount int
}

// ParseSummary extracts a Summary from raw .torrent bytes.
//
// Structurally damaged input (truncated values, lengths past the end of
// the buffer, overflowing integers) yields a *bencode.ParseError. Input
// that is not a torrent - empty, no top-level dictionary, no "info"
// entry, no usable name or size - yields (nil, nil): absence, not an
// error. ParseSummary never panics on adversarial input.
func ParseSummary(data []byte) (*Summary, error) {
	s := bencode.NewScanner(data)

	ch, err := s.Peek()
	if err != nil || ch != 'd' {
		return nil, nil
	}
	if err := s.EnterDict(); err != nil {
		return nil, err
	}

	for {
		done, err := s.EndReached()
		if err != nil {
			return nil, err
		}
		if done {
			return nil, nil // no "info" entry
		}
		key, err := s.ReadString()
		if err != nil {
			return nil, err
		}
		if string(key) != "info" {
			if err := s.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		// Capture the byte range of the info value without copying, then
		// walk only that range.
		start := s.Pos()
		if err := s.Skip(); err != nil {
			return nil, err
		}
		return summarizeInfo(s.Range(start, s.Pos()))
	}
}

// summarizeInfo walks the info dictionary, recognizing the keys "name",
// "length" and "files" and jumping everything else.
func summarizeInfo(info []byte) (*Summary, error) {
	s := bencode.NewScanner(info)
	ch, err := s.Peek()
	if err != nil || ch != 'd' {
		return nil, nil
	}
	if err := s.EnterDict(); err != nil {
		return nil, err
	}

	var (
		name      []byte
		haveName  bool
		total     int64
		fileCount int
		haveSize  bool
	)

	for {
		// Once both the name and a complete size/count are known the rest
		// of the dictionary cannot change the summary.
		if haveName && haveSize {
			break
		}
		done, err := s.EndReached()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		key, err := s.ReadString()
		if err != nil {
			return nil, err
		}
		switch string(key) {
		case "name":
			if ch, err := s.Peek(); err == nil && ch >= '0' && ch <= '9' {
				if name, err = s.ReadString(); err != nil {
					return nil, err
				}
				haveName = true
				continue
			}
		case "length":
			if ch, err := s.Peek(); err == nil && ch == 'i' {
				if total, err = s.ReadInteger(); err != nil {
					return nil, err
				}
				fileCount = 1
				haveSize = true
				continue
			}
		case "files":
			if ch, err := s.Peek(); err == nil && ch == 'l' {
				if total, fileCount, err = sumFiles(s); err != nil {
					return nil, err
				}
				haveSize = true
				continue
			}
		}
		// Unrecognized key, or a recognized key holding an unexpected
		// type: jump its value structurally.
		if err := s.Skip(); err != nil {
			return nil, err
		}
	}

	if !haveName || !haveSize || fileCount < 1 {
		return nil, nil
	}
	return &Summary{
		Name:      decodeName(name),
		TotalSize: total,
		FileCount: fileCount,
	}, nil
}

// sumFiles iterates the info.files list of per-file dictionaries, summing
// each entry's "length" and counting one file per dictionary. Per-file
// keys other than "length" (path, attr, ...) are skipped structurally.
func sumFiles(s *bencode.Scanner) (total int64, count int, err error) {
	if err = s.EnterList(); err != nil {
		return 0, 0, err
	}
	for {
		done, err := s.EndReached()
		if err != nil {
			return 0, 0, err
		}
		if done {
			return total, count, nil
		}
		ch, err := s.Peek()
		if err != nil {
			return 0, 0, err
		}
		if ch != 'd' {
			// Not a file dictionary; tolerate and step over it.
			if err := s.Skip(); err != nil {
				return 0, 0, err
			}
			continue
		}
		length, err := fileLength(s)
		if err != nil {
			return 0, 0, err
		}
		total += length
		count++
	}
}

// fileLength walks a single per-file dictionary and returns its "length".
func fileLength(s *bencode.Scanner) (int64, error) {
	if err := s.EnterDict(); err != nil {
		return 0, err
	}
	var length int64
	for {
		done, err := s.EndReached()
		if err != nil {
			return 0, err
		}
		if done {
			return length, nil
		}
		key, err := s.ReadString()
		if err != nil {
			return 0, err
		}
		if string(key) == "length" {
			if ch, err := s.Peek(); err == nil && ch == 'i' {
				if length, err = s.ReadInteger(); err != nil {
					return 0, err
				}
				continue
			}
		}
		if err := s.Skip(); err != nil {
			return 0, err
		}
	}
}

// decodeName interprets the raw name bytes as UTF-8, falling back to
// Latin-1 when the bytes are not valid UTF-8.
func decodeName(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
