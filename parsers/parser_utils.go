// C:\Users\wasab\OneDrive\デスクトップ\PORTION\parsers\parser_utils.go
package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// SkipBOM はUTF-8 BOMをスキップします。
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	bom := []byte{0xEF, 0xBB, 0xBF}
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	for i, b := range bom {
		if peeked[i] != b {
			return br
		}
	}
	br.Discard(3)
	return br
}

// NewDecodingReader は指定の文字コード（"utf-8", "windows-1251", "koi8-r", "shift_jis" など）から
// UTF-8 に変換します。空文字は UTF-8 とみなします。
func NewDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return SkipBOM(r), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// getColIndex はヘッダー名を列位置に対応付けます。必須ヘッダーが無ければエラーです。
func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.TrimSpace(colName)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("required header not found: %s", req)
		}
	}
	return colIndex, nil
}
