package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputUserEntered = "USER_ENTERED"
	renderFormattedValue  = "FORMATTED_VALUE"
)

// service adapts the generated Sheets client to API.
type service struct {
	srv *sheets.Service
}

// NewService authenticates with a service-account key file.
func NewService(ctx context.Context, credentialsFile string) (API, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, sheets.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &service{srv: srv}, nil
}

func (s *service) Worksheets(ctx context.Context, spreadsheetID string) ([]Worksheet, error) {
	resp, err := s.srv.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	out := make([]Worksheet, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		out = append(out, fromProperties(sh.Properties))
	}
	return out, nil
}

func (s *service) AddWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) (Worksheet, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	resp, err := s.srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return Worksheet{}, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return Worksheet{}, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return fromProperties(resp.Replies[0].AddSheet.Properties), nil
}

func (s *service) Resize(ctx context.Context, spreadsheetID string, sheetID, rows, cols int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
				Fields: "gridProperties(rowCount,columnCount)",
			},
		}},
	}
	_, err := s.srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (s *service) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s *service) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	vr := &sheets.ValueRange{Range: rng, Values: values}
	_, err := s.srv.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	return err
}

func (s *service) Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption(renderFormattedValue).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func fromProperties(p *sheets.SheetProperties) Worksheet {
	ws := Worksheet{ID: p.SheetId, Title: p.Title}
	if p.GridProperties != nil {
		ws.Rows = p.GridProperties.RowCount
		ws.Cols = p.GridProperties.ColumnCount
	}
	return ws
}
