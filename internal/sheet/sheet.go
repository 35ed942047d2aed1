// Package sheet reads the card data workbook: a Sets worksheet describing
// each set, a Card Data worksheet with one row per card face, and optional
// per-language worksheets carrying translated values. The workbook can also
// be fetched by URL into the workspace before reading.
package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cardpress/internal/snapshot"
)

// Worksheet names.
const (
	SetsSheet  = "Sets"
	CardsSheet = "Card Data"
)

// Special column headers of the Card Data worksheet. Every other non-empty
// column becomes a card property in column order.
const (
	colSetID    = "Set ID"
	colCardID   = "Card ID"
	colName     = "Name"
	colQuantity = "Quantity"
	colSide     = "Side"
)

// ErrMissingWorksheet indicates a workbook without a required worksheet.
var ErrMissingWorksheet = errors.New("missing worksheet")

// SetRow describes one row of the Sets worksheet.
type SetRow struct {
	ID        string
	Name      string
	Version   string
	Copyright string
	Languages []string
}

// Workbook wraps an open card data workbook.
type Workbook struct {
	file *excelize.File
}

// Open reads a workbook from disk.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sets returns the rows of the Sets worksheet. Rows without an id are
// skipped.
func (w *Workbook) Sets() ([]SetRow, error) {
	rows, err := w.file.GetRows(SetsSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingWorksheet, SetsSheet)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := headerIndex(rows[0])
	var sets []SetRow
	for _, row := range rows[1:] {
		id := cell(row, header.col("ID"))
		if id == "" {
			continue
		}
		set := SetRow{
			ID:        id,
			Name:      cell(row, header.col("Name")),
			Version:   cell(row, header.col("Version")),
			Copyright: cell(row, header.col("Copyright")),
		}
		if langs := cell(row, header.col("Languages")); langs != "" {
			for _, lang := range strings.Split(langs, ",") {
				if lang = strings.TrimSpace(lang); lang != "" {
					set.Languages = append(set.Languages, lang)
				}
			}
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// FindSet returns the Sets row with the given id.
func (w *Workbook) FindSet(setID string) (SetRow, error) {
	sets, err := w.Sets()
	if err != nil {
		return SetRow{}, err
	}
	for _, set := range sets {
		if set.ID == setID {
			return set, nil
		}
	}
	return SetRow{}, fmt.Errorf("set %q not in workbook", setID)
}

// Cards returns the cards of one set in row order. A row whose Side column
// reads "B" becomes the back face of the preceding row with the same card id.
// A non-empty language selects the translation worksheet of that name; a
// missing translation worksheet falls back to the base values.
func (w *Workbook) Cards(setID, language string) ([]snapshot.CardInfo, error) {
	rows, err := w.file.GetRows(CardsSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingWorksheet, CardsSheet)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	overrides, err := w.translations(language)
	if err != nil {
		return nil, err
	}

	headerRow := rows[0]
	header := headerIndex(headerRow)
	propCols := propertyColumns(headerRow)

	var cards []snapshot.CardInfo
	index := make(map[string]int)
	for _, row := range rows[1:] {
		if cell(row, header.col(colSetID)) != setID {
			continue
		}
		id := cell(row, header.col(colCardID))
		if id == "" {
			continue
		}

		name := cell(row, header.col(colName))
		props := make([]snapshot.CardProperty, 0, len(propCols))
		side := strings.ToUpper(cell(row, header.col(colSide)))
		for _, pc := range propCols {
			value := cell(row, pc.index)
			if ov, ok := overrides[translationKey(id, side, pc.name)]; ok {
				value = ov
			}
			props = append(props, snapshot.CardProperty{Name: pc.name, Value: value})
		}
		if ov, ok := overrides[translationKey(id, side, colName)]; ok {
			name = ov
		}

		if side == "B" {
			at, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("card %s: side B row without a preceding side A row", id)
			}
			cards[at].Back = &snapshot.FaceInfo{Name: name, Properties: props}
			continue
		}

		quantity := 0
		if q := cell(row, header.col(colQuantity)); q != "" {
			quantity, err = strconv.Atoi(q)
			if err != nil {
				return nil, fmt.Errorf("card %s: quantity %q is not a number", id, q)
			}
		}
		index[id] = len(cards)
		cards = append(cards, snapshot.CardInfo{
			ID:         id,
			Name:       name,
			Quantity:   quantity,
			Properties: props,
		})
	}
	return cards, nil
}

// translations loads the override map of a language worksheet: card id + side
// + column header to translated value. Empty cells do not override.
func (w *Workbook) translations(language string) (map[string]string, error) {
	if language == "" {
		return nil, nil
	}
	rows, err := w.file.GetRows(language)
	if err != nil {
		// No worksheet for the language: base values apply.
		return nil, nil //nolint:nilerr
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headerRow := rows[0]
	header := headerIndex(headerRow)
	overrides := make(map[string]string)
	for _, row := range rows[1:] {
		id := cell(row, header.col(colCardID))
		if id == "" {
			continue
		}
		side := strings.ToUpper(cell(row, header.col(colSide)))
		for col, name := range headerRow {
			if name == colCardID || name == colSide || name == "" {
				continue
			}
			if value := cell(row, col); value != "" {
				overrides[translationKey(id, side, name)] = value
			}
		}
	}
	return overrides, nil
}

func translationKey(id, side, column string) string {
	if side == "" {
		side = "A"
	}
	return id + "\x00" + side + "\x00" + column
}

type propertyColumn struct {
	name  string
	index int
}

func propertyColumns(headerRow []string) []propertyColumn {
	special := map[string]struct{}{
		colSetID: {}, colCardID: {}, colName: {}, colQuantity: {}, colSide: {},
	}
	cols := make([]propertyColumn, 0, len(headerRow))
	for i, name := range headerRow {
		if name == "" {
			continue
		}
		if _, ok := special[name]; ok {
			continue
		}
		cols = append(cols, propertyColumn{name: name, index: i})
	}
	return cols
}

// headerMap resolves column headers to indices; unknown headers resolve to
// -1, which cell treats as an empty value.
type headerMap map[string]int

func headerIndex(headerRow []string) headerMap {
	index := make(headerMap, len(headerRow))
	for i, name := range headerRow {
		if name != "" {
			index[name] = i
		}
	}
	return index
}

func (h headerMap) col(name string) int {
	if i, ok := h[name]; ok {
		return i
	}
	return -1
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
