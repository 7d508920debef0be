package mergeengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// ConflictHeader is the mandatory first line of every .jinmerge file;
// the detector for ".jinmerge" files matches both the extension and
// this header (spec.md §6).
const ConflictHeader = "# Jin merge conflict. Resolve and run 'jin resolve <file>'"

const (
	markerStart = "<<<<<<<"
	markerSep   = "======="
	markerEnd   = ">>>>>>>"
)

// ConflictRegion is one conflicting span between two layers, grounded
// on the Git-compatible marker idiom seen across the example corpus's
// own merge implementations (other_examples' NahomAnteneh-vec
// internal/merge and odvcencio-got pkg/repo/merge.go), here labeled
// with ref paths instead of "ours"/"theirs".
type ConflictRegion struct {
	Layer1Ref     string
	Layer1Content string
	Layer2Ref     string
	Layer2Content string
	StartLine     int
	EndLine       int
}

// ConflictFile is the full parsed .jinmerge document.
type ConflictFile struct {
	Regions []ConflictRegion
}

// Write renders cf into the .jinmerge text format. Regions are
// separated by nothing extra — each region's own markers delimit it —
// so writer and parser round-trip byte-for-byte modulo trailing
// newline normalization.
func Write(cf ConflictFile) string {
	var b strings.Builder
	b.WriteString(ConflictHeader)
	b.WriteString("\n")
	for _, r := range cf.Regions {
		fmt.Fprintf(&b, "%s %s\n", markerStart, r.Layer1Ref)
		b.WriteString(r.Layer1Content)
		if !strings.HasSuffix(r.Layer1Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(markerSep)
		b.WriteString("\n")
		b.WriteString(r.Layer2Content)
		if !strings.HasSuffix(r.Layer2Content, "\n") {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", markerEnd, r.Layer2Ref)
	}
	return b.String()
}

// Parse reads a .jinmerge document. It fails with Parse("jinmerge", …)
// on a missing header, a missing separator or end marker, or if nested
// start markers are observed before a region's end marker closes.
func Parse(data string) (ConflictFile, error) {
	lines := strings.Split(data, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != ConflictHeader {
		return ConflictFile{}, jinerr.New(jinerr.KindParse, "jinmerge: missing or malformed header")
	}

	var cf ConflictFile
	i := 1
	lineNum := 1
	for i < len(lines) {
		line := lines[i]
		if line == "" && i == len(lines)-1 {
			break // trailing newline artifact from Split
		}
		if !strings.HasPrefix(line, markerStart+" ") {
			if line == "" {
				i++
				lineNum++
				continue
			}
			return ConflictFile{}, jinerr.Newf(jinerr.KindParse, "jinmerge: expected %s at line %d", markerStart, i+1)
		}
		region := ConflictRegion{Layer1Ref: strings.TrimPrefix(line, markerStart+" ")}
		region.StartLine = lineNum
		i++

		var layer1 []string
		for {
			if i >= len(lines) {
				return ConflictFile{}, jinerr.New(jinerr.KindParse, "jinmerge: missing separator before end of file")
			}
			if lines[i] == markerSep {
				break
			}
			if strings.HasPrefix(lines[i], markerStart+" ") {
				return ConflictFile{}, jinerr.Newf(jinerr.KindParse, "jinmerge: nested %s marker at line %d", markerStart, i+1)
			}
			layer1 = append(layer1, lines[i])
			i++
		}
		i++ // consume separator

		var layer2 []string
		for {
			if i >= len(lines) {
				return ConflictFile{}, jinerr.New(jinerr.KindParse, "jinmerge: missing end marker before end of file")
			}
			if strings.HasPrefix(lines[i], markerEnd+" ") {
				region.Layer2Ref = strings.TrimPrefix(lines[i], markerEnd+" ")
				break
			}
			if strings.HasPrefix(lines[i], markerStart+" ") {
				return ConflictFile{}, jinerr.Newf(jinerr.KindParse, "jinmerge: nested %s marker at line %d", markerStart, i+1)
			}
			layer2 = append(layer2, lines[i])
			i++
		}
		i++ // consume end marker

		region.Layer1Content = joinLines(layer1)
		region.Layer2Content = joinLines(layer2)
		region.EndLine = lineNum + len(layer1) + len(layer2) + 2
		lineNum = region.EndLine + 1
		cf.Regions = append(cf.Regions, region)
	}
	return cf, nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// IsConflictFile reports whether path+header identify a .jinmerge
// document, per the detector in spec.md §6 (extension AND header
// match).
func IsConflictFile(path string, firstLine string) bool {
	return strings.HasSuffix(path, ".jinmerge") && strings.TrimRight(firstLine, "\r") == ConflictHeader
}

// FormatLineRange is a small helper for logging/status output.
func FormatLineRange(r ConflictRegion) string {
	return strconv.Itoa(r.StartLine) + "-" + strconv.Itoa(r.EndLine)
}
