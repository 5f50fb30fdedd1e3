// Package google wraps the Drive and Sheets APIs used to share project data
// with spreadsheets. Every failure surfaces as an integration error.
package google

import (
	"context"
	"fmt"
	"strings"

	"obrafin/pkg/apperror"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const folderMimeType = "application/vnd.google-apps.folder"

// File is a Drive file or folder.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValueRange is a block of cells read from a sheet.
type ValueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// Client is the spreadsheet collaborator. It is built once and shared.
type Client interface {
	ListFolders(ctx context.Context) ([]File, error)
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	CreateSpreadsheet(ctx context.Context, title string) (string, error)
	CopySpreadsheet(ctx context.Context, templateID, title, folderID string) (string, error)
	GetValues(ctx context.Context, spreadsheetID, rng string) (ValueRange, error)
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int64, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// Credentials selects how the service account is loaded. JSON wins over File.
type Credentials struct {
	File string
	JSON string
}

func (c Credentials) Configured() bool {
	return c.File != "" || c.JSON != ""
}

type client struct {
	drive  *drive.Service
	sheets *sheets.Service
}

// NewClient authenticates with a service account for Drive and Sheets.
func NewClient(ctx context.Context, creds Credentials) (Client, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveScope, sheets.SpreadsheetsScope)}
	switch {
	case creds.JSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	case creds.File != "":
		opts = append(opts, option.WithCredentialsFile(creds.File))
	default:
		return nil, fmt.Errorf("google: no credentials configured")
	}

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: drive service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: sheets service: %w", err)
	}
	return &client{drive: driveSvc, sheets: sheetsSvc}, nil
}

// escapeQuery quotes a value for a Drive search expression.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func listed(files []*drive.File) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		out = append(out, File{ID: f.Id, Name: f.Name})
	}
	return out
}

func (c *client) ListFolders(ctx context.Context) ([]File, error) {
	res, err := c.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", folderMimeType)).
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return nil, apperror.Integration("Erro ao listar pastas", err)
	}
	return listed(res.Files), nil
}

func (c *client) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	res, err := c.drive.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return nil, apperror.Integration("Erro ao listar arquivos", err)
	}
	return listed(res.Files), nil
}

// CreateSpreadsheet creates a spreadsheet with a "Dados" tab holding the default header row.
func (c *client) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	if title == "" {
		title = "Nova Planilha"
	}
	header := []*sheets.CellData{}
	for _, h := range []string{"Nome", "Email", "Telefone"} {
		v := h
		header = append(header, &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{StringValue: &v}})
	}
	req := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{Title: "Dados"},
			Data: []*sheets.GridData{{
				RowData: []*sheets.RowData{{Values: header}},
			}},
		}},
	}
	res, err := c.sheets.Spreadsheets.Create(req).Context(ctx).Do()
	if err != nil {
		return "", apperror.Integration("Erro ao criar planilha", err)
	}
	return res.SpreadsheetId, nil
}

func (c *client) CopySpreadsheet(ctx context.Context, templateID, title, folderID string) (string, error) {
	file := &drive.File{Name: title}
	if folderID != "" {
		file.Parents = []string{folderID}
	}
	res, err := c.drive.Files.Copy(templateID, file).Context(ctx).Do()
	if err != nil {
		return "", apperror.Integration("Erro ao copiar planilha", err)
	}
	return res.Id, nil
}

func (c *client) GetValues(ctx context.Context, spreadsheetID, rng string) (ValueRange, error) {
	res, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ValueRange{}, apperror.Integration("Erro ao buscar dados da planilha", err)
	}
	values := make([][]any, 0, len(res.Values))
	for _, row := range res.Values {
		values = append(values, []any(row))
	}
	return ValueRange{Range: res.Range, Values: values}, nil
}

// UpdateValues writes values at rng as if typed by a user and returns the updated cell count.
func (c *client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int64, error) {
	body := &sheets.ValueRange{Values: make([][]interface{}, 0, len(values))}
	for _, row := range values {
		body.Values = append(body.Values, row)
	}
	res, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return 0, apperror.Integration("Erro ao atualizar dados da planilha", err)
	}
	return res.UpdatedCells, nil
}

// AddSheet adds a tab and returns its sheet id.
func (c *client) AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}
	res, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, apperror.Integration("Erro ao adicionar nova aba", err)
	}
	if len(res.Replies) == 0 || res.Replies[0].AddSheet == nil || res.Replies[0].AddSheet.Properties == nil {
		return 0, apperror.Integration("Erro ao adicionar nova aba", fmt.Errorf("empty batch reply"))
	}
	return res.Replies[0].AddSheet.Properties.SheetId, nil
}

func (c *client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.drive.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return apperror.Integration("Erro ao excluir arquivo", err)
	}
	return nil
}

// Unconfigured is used when no credentials are set; every call fails.
type Unconfigured struct{}

func (Unconfigured) err() error {
	return apperror.Integration("integração com Google não configurada", nil)
}

func (u Unconfigured) ListFolders(context.Context) ([]File, error) {
	return nil, u.err()
}

func (u Unconfigured) ListFiles(context.Context, string) ([]File, error) {
	return nil, u.err()
}

func (u Unconfigured) CreateSpreadsheet(context.Context, string) (string, error) {
	return "", u.err()
}

func (u Unconfigured) CopySpreadsheet(context.Context, string, string, string) (string, error) {
	return "", u.err()
}

func (u Unconfigured) GetValues(context.Context, string, string) (ValueRange, error) {
	return ValueRange{}, u.err()
}

func (u Unconfigured) UpdateValues(context.Context, string, string, [][]any) (int64, error) {
	return 0, u.err()
}

func (u Unconfigured) AddSheet(context.Context, string, string) (int64, error) {
	return 0, u.err()
}

func (u Unconfigured) DeleteFile(context.Context, string) error {
	return u.err()
}
