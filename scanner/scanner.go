// Package scanner implements the Lexical Scanner (§4.A): a
// hand-written, marker-driven lexer that produces one file's direct
// dependency record without a general C++ parser or tree-sitter
// grammar. It recognizes #include, import, export module/import, and
// bare module declarations while skipping string/character literals
// (including raw strings) and comments.
package scanner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
)

// markers are the eight literal strings the scanner hunts for, in no
// particular order — the earliest occurrence in the buffer always
// wins (§4.A).
var markers = []string{"#include", `"`, "'", "//", "/*", "import", "export", "module"}

var (
	moduleNamePattern  = regexp.MustCompile(`^[\w.:]+$`)
	libraryImportShape = regexp.MustCompile(`^<[^<>]*>$`)
	localImportShape   = regexp.MustCompile(`^"[^"]*"$`)
)

// Scan reads path through fsys and produces its direct dependency
// record. idx receives partition registrations as they are
// encountered (§4.A's import/export-import handling registers
// partitions directly into the Module Index). mapper supplies the
// header/source pairing used to seed the record's Sources set.
func Scan(fsys platform.FileSystem, idx *modindex.Index, mapper *extmap.Mapper, path string) (*model.Record, error) {
	if !fsys.Exists(path) {
		return nil, model.New(model.KindFileMissing, path, "file does not exist")
	}
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, model.Wrap(model.KindFileMissing, path, err)
	}
	content := string(raw)
	rec := model.NewRecord()

	pos := 0
	for pos < len(content) {
		at, marker, err := nextMarker(content, pos, path)
		if err != nil {
			return nil, err
		}
		if marker == "" {
			break
		}
		switch marker {
		case "#include":
			pos, err = scanInclude(content, at, rec, path)
		case `"`:
			pos, err = scanQuote(content, at, path)
		case "'":
			pos, err = scanLiteral(content, at, '\'', path)
		case "//":
			pos = scanLineComment(content, at)
		case "/*":
			pos = scanBlockComment(content, at)
		case "import":
			pos, err = scanImportKeyword(content, at, rec, idx, path)
		case "export":
			pos, err = scanExportKeyword(content, at, rec, idx, path)
		case "module":
			pos, err = scanModuleKeyword(content, at, rec, path)
		}
		if err != nil {
			return nil, err
		}
	}

	if sib, ok := mapper.SiblingSource(fsys, path); ok {
		rec.Sources.Add(sib)
	}
	return rec, nil
}

// nextMarker finds the earliest occurrence, at or after from, of any
// marker string. Not-found markers are treated as occurring past the
// end of the buffer. A genuine tie between two distinct markers at
// the same position is reported as an UnknownDirective error.
func nextMarker(content string, from int, path string) (pos int, marker string, err error) {
	best := len(content)
	bestMarker := ""
	tied := 0
	for _, m := range markers {
		rel := strings.Index(content[from:], m)
		if rel == -1 {
			continue
		}
		abs := from + rel
		switch {
		case abs < best:
			best = abs
			bestMarker = m
			tied = 1
		case abs == best:
			tied++
		}
	}
	if bestMarker == "" {
		return len(content), "", nil
	}
	if tied > 1 {
		return 0, "", model.New(model.KindUnknownDirective, path,
			"ambiguous marker at byte %d", best)
	}
	return best, bestMarker, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

func skipSpace(content string, i int) int {
	for i < len(content) && isSpace(content[i]) {
		i++
	}
	return i
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBoundaryViolated reports whether the keyword occupying
// content[start:end] is glued to an identifier on either side (i.e.
// it is a suffix or prefix of a longer word, not a standalone
// keyword), per the word-boundary guards on import/export/module
// (§4.A).
func wordBoundaryViolated(content string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(content[:start])
		if isWordRune(r) {
			return true
		}
	}
	if end < len(content) {
		r, _ := utf8.DecodeRuneInString(content[end:])
		if isWordRune(r) {
			return true
		}
	}
	return false
}

// scanInclude handles the #include marker.
func scanInclude(content string, pos int, rec *model.Record, path string) (int, error) {
	i := skipSpace(content, pos+len("#include"))
	if i >= len(content) {
		return 0, model.New(model.KindMalformedInclude, path,
			"missing header spelling after #include")
	}
	switch content[i] {
	case '<':
		j := i + 1
		for j < len(content) && content[j] != '<' && content[j] != '>' {
			j++
		}
		if j >= len(content) || content[j] != '>' {
			return 0, model.New(model.KindMalformedInclude, path,
				"unterminated <...> after #include")
		}
		rec.HeadersLibrary.Add(content[i+1 : j])
		return j + 1, nil
	case '"':
		j := i + 1
		for j < len(content) && content[j] != '"' {
			j++
		}
		if j >= len(content) {
			return 0, model.New(model.KindMalformedInclude, path,
				`unterminated "..." after #include`)
		}
		rec.HeadersLocal.Add(content[i+1 : j])
		return j + 1, nil
	default:
		return 0, model.New(model.KindMalformedInclude, path,
			"expected <...> or \"...\" after #include, got %q", content[i])
	}
}

// scanQuote handles the `"` marker: a raw string literal if the
// preceding byte is 'R', a regular string literal otherwise.
func scanQuote(content string, pos int, path string) (int, error) {
	if pos > 0 && content[pos-1] == 'R' {
		return scanRawString(content, pos, path)
	}
	return scanLiteral(content, pos, '"', path)
}

// scanRawString handles R"delim(...)delim" raw string literals.
// pos is the index of the opening quote.
func scanRawString(content string, pos int, path string) (int, error) {
	i := pos + 1
	parenRel := strings.IndexByte(content[i:], '(')
	if parenRel == -1 {
		return 0, model.New(model.KindUnterminatedLiteral, path,
			"raw string literal missing '(' delimiter terminator")
	}
	delim := content[i : i+parenRel]
	bodyStart := i + parenRel + 1
	closer := ")" + delim + `"`
	rel := strings.Index(content[bodyStart:], closer)
	if rel == -1 {
		return 0, model.New(model.KindUnterminatedLiteral, path,
			"raw string literal with delimiter %q is never closed", delim)
	}
	return bodyStart + rel + len(closer), nil
}

// scanLiteral handles a non-raw string or character literal starting
// at pos (the opening delimiter), ending at the first unescaped
// occurrence of closer. A bare newline before the closer is an error.
func scanLiteral(content string, pos int, closer byte, path string) (int, error) {
	i := pos + 1
	for i < len(content) {
		c := content[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '\n' || c == '\r' {
			return 0, model.New(model.KindMultilineLiteral, path,
				"literal starting at byte %d contains a newline", pos)
		}
		if c == closer {
			return i + 1, nil
		}
		i++
	}
	return 0, model.New(model.KindUnterminatedLiteral, path,
		"literal starting at byte %d is never closed", pos)
}

// scanLineComment drops everything up to (not including) the next
// line terminator, or to end of buffer. It does not consume the
// terminator itself, so the next pass sees it as plain whitespace —
// deliberately avoiding the off-by-one some historical revisions of
// this scan had (§9).
func scanLineComment(content string, pos int) int {
	i := pos + len("//")
	for j := i; j < len(content); j++ {
		if c := content[j]; c == '\n' || c == '\r' {
			return j
		}
	}
	return len(content)
}

// scanBlockComment drops through the first "*/". An unterminated
// block comment consumes the rest of the buffer rather than failing;
// nothing in §7 lists a dedicated error kind for it.
func scanBlockComment(content string, pos int) int {
	i := pos + len("/*")
	rel := strings.Index(content[i:], "*/")
	if rel == -1 {
		return len(content)
	}
	return i + rel + len("*/")
}

// scanImportKeyword handles a bare `import ...;` (§4.A).
func scanImportKeyword(content string, pos int, rec *model.Record, idx *modindex.Index, path string) (int, error) {
	end := pos + len("import")
	if wordBoundaryViolated(content, pos, end) {
		return end, nil
	}
	i := skipSpace(content, end)
	semiRel := strings.IndexByte(content[i:], ';')
	if semiRel == -1 {
		return 0, model.New(model.KindMalformedImport, path,
			"unexpected termination after 'import'")
	}
	spelling := strings.TrimSpace(content[i : i+semiRel])
	newPos := i + semiRel + 1

	switch {
	case libraryImportShape.MatchString(spelling):
		rec.ModulesLibrary.Add(spelling[1 : len(spelling)-1])
	case localImportShape.MatchString(spelling):
		rec.ModulesLocal.Add(spelling[1 : len(spelling)-1])
	case moduleNamePattern.MatchString(spelling):
		if strings.HasPrefix(spelling, ":") {
			primary := rec.Provide
			if primary == "" {
				primary = rec.Implement
			}
			if primary == "" {
				return 0, model.New(model.KindMalformedImport, path,
					"partition import %q outside a module unit", spelling)
			}
			if last := strings.LastIndex(primary, ":"); last >= 0 {
				primary = primary[:last]
			}
			idx.AddPartition(primary, spelling)
			rec.ModulesModule.Add(primary + spelling)
		} else {
			rec.ModulesModule.Add(spelling)
		}
	default:
		return 0, model.New(model.KindMalformedImport, path,
			"unrecognized import spelling %q", spelling)
	}
	return newPos, nil
}

// scanExportKeyword handles `export module ...;`, `export import
// ...;`, and bare `export` qualifying another declaration (§4.A).
func scanExportKeyword(content string, pos int, rec *model.Record, idx *modindex.Index, path string) (int, error) {
	end := pos + len("export")
	if wordBoundaryViolated(content, pos, end) {
		return end, nil
	}
	i := skipSpace(content, end)

	switch {
	case hasWordKeyword(content, i, "module"):
		kwEnd := i + len("module")
		j := skipSpace(content, kwEnd)
		semiRel := strings.IndexByte(content[j:], ';')
		if semiRel == -1 {
			return 0, model.New(model.KindMalformedImport, path,
				"unexpected termination after 'export module'")
		}
		name := strings.TrimSpace(content[j : j+semiRel])
		if rec.Provide != "" {
			return 0, model.New(model.KindMalformedImport, path,
				"exporting more than one module in the same file")
		}
		if rec.Implement != "" {
			return 0, model.New(model.KindMalformedImport, path,
				"a file cannot both provide and implement a module")
		}
		rec.Provide = name
		return j + semiRel + 1, nil

	case hasWordKeyword(content, i, "import"):
		kwEnd := i + len("import")
		j := skipSpace(content, kwEnd)
		semiRel := strings.IndexByte(content[j:], ';')
		if semiRel == -1 {
			return 0, model.New(model.KindMalformedImport, path,
				"unexpected termination after 'export import'")
		}
		partition := strings.TrimSpace(content[j : j+semiRel])
		if !strings.HasPrefix(partition, ":") {
			return 0, model.New(model.KindMalformedImport, path,
				"export import spelling %q must start with ':'", partition)
		}
		if rec.Provide == "" {
			return 0, model.New(model.KindMalformedImport, path,
				"re-exporting partition %q before exporting a module", partition)
		}
		idx.AddPartition(rec.Provide, partition)
		rec.ModulesModule.Add(rec.Provide + partition)
		return j + semiRel + 1, nil

	default:
		// Bare `export` qualifying a declaration; ignored.
		return end, nil
	}
}

// hasWordKeyword reports whether content[at:] begins with kw followed
// by a non-word character (or end of buffer).
func hasWordKeyword(content string, at int, kw string) bool {
	if !strings.HasPrefix(content[at:], kw) {
		return false
	}
	end := at + len(kw)
	if end >= len(content) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(content[end:])
	return !isWordRune(r)
}

// scanModuleKeyword handles a bare `module X;` implementation-unit
// declaration, or an empty `module;` global-module-fragment opener,
// which is ignored (§4.A).
func scanModuleKeyword(content string, pos int, rec *model.Record, path string) (int, error) {
	end := pos + len("module")
	if wordBoundaryViolated(content, pos, end) {
		return end, nil
	}
	i := skipSpace(content, end)
	semiRel := strings.IndexByte(content[i:], ';')
	if semiRel == -1 {
		return 0, model.New(model.KindMalformedImport, path,
			"unexpected termination after 'module'")
	}
	name := strings.TrimSpace(content[i : i+semiRel])
	newPos := i + semiRel + 1
	if name == "" {
		return newPos, nil
	}
	if rec.Implement != "" {
		return 0, model.New(model.KindMalformedImport, path,
			"implementing more than one module in the same file")
	}
	if rec.Provide != "" {
		return 0, model.New(model.KindMalformedImport, path,
			"a file cannot both provide and implement a module")
	}
	rec.Implement = name
	return newPos, nil
}
