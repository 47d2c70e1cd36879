package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"bookshelf-backend/internal/domains/book/model"
)

const exportSheetName = "Books"

// ExportBooksToExcel builds a workbook with one row per book and the
// names of its authors. Links to missing authors are shown by id.
func (s *BookService) ExportBooksToExcel(ctx context.Context) (*excelize.File, int, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	authors, err := s.authors.FindAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}

	names := make(map[uuid.UUID]string, len(authors))
	for _, a := range authors {
		names[a.ID] = a.FirstName + " " + a.LastName
	}

	f, err := buildBooksExcelFile(books, names)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, len(books), nil
}

func buildBooksExcelFile(books []*model.Book, names map[uuid.UUID]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Title", "IBAN", "Published At", "Authors", "Author IDs", "Created At", "Updated At"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)
	}

	for i, b := range books {
		authorNames := make([]string, len(b.AuthorIDs))
		authorIDs := make([]string, len(b.AuthorIDs))
		for j, id := range b.AuthorIDs {
			authorIDs[j] = id.String()
			if name, ok := names[id]; ok {
				authorNames[j] = name
			} else {
				authorNames[j] = id.String()
			}
		}

		row := []interface{}{
			b.ID.String(),
			b.Title,
			b.IBAN,
			b.PublishedAt.Format("2006-01-02"),
			strings.Join(authorNames, ", "),
			strings.Join(authorIDs, ", "),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

