// Package proofsheet lays rendered card pairs onto duplex-printable PDF proof
// sheets. Each sheet holds six cards in a 3x2 grid; every front page is
// followed by its back page with each row mirrored so long-edge duplex
// printing lines fronts and backs up. Role buckets paginate independently,
// so no sheet ever mixes player, encounter, and custom backs.
package proofsheet

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"cardpress/internal/imagepool"
)

// Card dimensions in inches.
const (
	CardWidth  = 2.75
	CardHeight = 3.75
)

const (
	gridCols     = 3
	gridRows     = 2
	slotsPerPage = gridCols * gridRows
)

// backOrder mirrors each grid row so a back lands behind its front when the
// sheet is flipped on the long edge.
var backOrder = [slotsPerPage]int{2, 1, 0, 5, 4, 3}

var pageSizes = map[string]string{
	"a4":     "A4",
	"letter": "Letter",
}

// sheet is one front/back page pair. Empty slots hold "".
type sheet struct {
	fronts [slotsPerPage]string
	backs  [slotsPerPage]string
}

// paginate chunks one bucket's pairs into sheets, right-padding the final
// partial sheet.
func paginate(pairs []imagepool.Pair) []sheet {
	sheets := make([]sheet, 0, (len(pairs)+slotsPerPage-1)/slotsPerPage)
	for start := 0; start < len(pairs); start += slotsPerPage {
		var s sheet
		for i := 0; i < slotsPerPage && start+i < len(pairs); i++ {
			s.fronts[i] = pairs[start+i].Front
			s.backs[i] = pairs[start+i].Back
		}
		sheets = append(sheets, s)
	}
	return sheets
}

// assemble paginates each bucket on its own and concatenates the sheets in
// bucket order. A partial final sheet of one bucket stays padded; the next
// bucket starts on a fresh sheet.
func assemble(buckets [][]imagepool.Pair) []sheet {
	var sheets []sheet
	for _, bucket := range buckets {
		sheets = append(sheets, paginate(bucket)...)
	}
	return sheets
}

// Generate writes one multi-page PDF for the given page format ("a4" or
// "letter") containing every bucket's pairs in order. Zero pairs across all
// buckets is an error rather than an empty document.
func Generate(buckets [][]imagepool.Pair, pageFormat, outPath string) error {
	size, ok := pageSizes[strings.ToLower(pageFormat)]
	if !ok {
		return fmt.Errorf("unknown page format %q", pageFormat)
	}
	sheets := assemble(buckets)
	if len(sheets) == 0 {
		return fmt.Errorf("%w: nothing to lay out", imagepool.ErrNoCardsFound)
	}

	pdf := gofpdf.New("L", "in", size, "")
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	marginX := (pageW - gridCols*CardWidth) / 2
	marginY := (pageH - gridRows*CardHeight) / 2

	place := func(path string, slot int) {
		if path == "" {
			return
		}
		col := slot % gridCols
		row := slot / gridCols
		x := marginX + float64(col)*CardWidth
		y := marginY + float64(row)*CardHeight
		pdf.ImageOptions(path, x, y, CardWidth, CardHeight, false,
			gofpdf.ImageOptions{ReadDpi: false}, 0, "")
	}

	for _, s := range sheets {
		pdf.AddPage()
		for slot, path := range s.fronts {
			place(path, slot)
		}
		pdf.AddPage()
		for slot, src := range backOrder {
			place(s.backs[src], slot)
		}
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write proof sheet %s: %w", outPath, err)
	}
	return nil
}
