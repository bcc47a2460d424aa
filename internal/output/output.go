// 包 output：结果表输出（CSV 与 Markdown）
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"venue-vacancy/internal/pipeline"
)

var (
	header      = []string{"会場", "チェックイン", "ホテル名", "料金", "予約URL"}
	emptyHeader = []string{"会場", "結果"}
)

// bom：表格软件按 UTF-8 识别中日文字
const bom = "\ufeff"

// WriteCSV：写出结果；无结果时仍写出仅含表头的文件，便于下游制品收集
func WriteCSV(w io.Writer, rows []pipeline.Row) error {
	if len(rows) == 0 {
		cw := csv.NewWriter(w)
		_ = cw.Write(emptyHeader)
		cw.Flush()
		return cw.Error()
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Venue, r.Checkin, r.HotelName, strconv.Itoa(r.Price), r.ReserveURL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV：写入文件
func SaveCSV(path string, rows []pipeline.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteMarkdown：GitHub 风格表格
func WriteMarkdown(w io.Writer, rows []pipeline.Row) error {
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(":---|", len(header)-2) + "---:|:---|\n")
	for _, r := range rows {
		cells := []string{r.Venue, r.Checkin, r.HotelName, strconv.Itoa(r.Price), r.ReserveURL}
		for i, c := range cells {
			cells[i] = escape(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
