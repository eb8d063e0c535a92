package region

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/jamofind/internal/utils"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const (
	columnCode    = "법정동코드"
	columnAddress = "법정동명"
	columnStatus  = "폐지여부"

	statusActive = "존재"
)

// ErrTSVHeader is returned when the header row lacks a required column.
var ErrTSVHeader = errors.New("region tsv: missing column")

// ParseTSV reads the legal-dong code table published by the Ministry of the Interior:
// tab separated, a header row naming 법정동코드, 법정동명 and 폐지여부, in UTF-8 or EUC-KR.
// Only rows whose status is 존재 (still in use) are returned, in file order.
// A code listed twice keeps its first row.
func ParseTSV(r io.Reader) ([]Code, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("region tsv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, korean.EUCKR.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrTSVHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("region tsv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	idx := make(map[string]int, 3)
	for _, name := range []string{columnCode, columnAddress, columnStatus} {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTSVHeader, name)
		}
		idx[name] = i
	}

	var codes []Code
	seen := utils.NewSeen[string]()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("region tsv line %d: %w", line, err)
		}

		field := func(name string) string {
			if i := idx[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if field(columnStatus) != statusActive {
			continue
		}
		code, addr := field(columnCode), field(columnAddress)
		if code == "" || addr == "" || !seen.First(code) {
			continue
		}
		codes = append(codes, Code{LawAddrCode: code, Address: addr})
	}
	return codes, nil
}
