package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParse_CSVHeaderAliases(t *testing.T) {
	input := "\ufeffFirst Name,last_name,EMAIL,Password,role,Phone Number,dept\n" +
		"Ada,Lovelace,ada@example.com,supersecret,Developer,555-0100,R&D\n" +
		"Alan , Turing,alan@example.com,anothersecret,Manager,,\n"

	rows, err := Parse(strings.NewReader(input), "users.CSV")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Parse() rows = %d, want 2", len(rows))
	}

	want := Row{Line: 2, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "supersecret", Role: "Developer", Phone: "555-0100", Department: "R&D"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
	if rows[1].FirstName != "Alan" || rows[1].Role != "Manager" || rows[1].Phone != "" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestParse_CSVHeaderOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader("firstName,lastName,email,password,role\n"), "empty.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Parse() rows = %d, want 0", len(rows))
	}
}

func TestParse_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]any{
		{"firstname", "lastname", "email", "password", "role", "department"},
		{"Grace", "Hopper", "grace@example.com", "cobol4ever", "Manager", "Navy"},
		{"", "", "", "", "", ""},
		{"Linus", "Torvalds", "linus@example.com", "kernel123", "Developer"},
	}
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := Parse(&buf, "people.xlsx")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Parse() rows = %d, want 2", len(rows))
	}
	if rows[0].Department != "Navy" || rows[1].Email != "linus@example.com" || rows[1].Department != "" {
		t.Errorf("rows = %+v", rows)
	}
	// The blank sheet line 3 is skipped but still counted.
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Errorf("lines = %d, %d, want 2, 4", rows[0].Line, rows[1].Line)
	}
	if got := rows[1].Number(1); got != 4 {
		t.Errorf("Number() = %d, want 4", got)
	}
}

func TestParse_CSVLinesAfterBlankLine(t *testing.T) {
	input := "firstName,lastName,email,password,role\n" +
		"Ada,Lovelace,ada@example.com,supersecret,Developer\n" +
		"\n" +
		"Alan,Turing,not-an-email,anothersecret,Manager\n"

	rows, err := Parse(strings.NewReader(input), "users.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Parse() rows = %d, want 2", len(rows))
	}
	rowErr := rows[1].Validate(rows[1].Number(1))
	if rowErr == nil || rowErr.Row != 4 || rowErr.Field != "email" {
		t.Errorf("Validate() = %+v, want email error on line 4", rowErr)
	}
}

func TestRow_NumberWithoutLine(t *testing.T) {
	if got := (Row{}).Number(3); got != 5 {
		t.Errorf("Number() = %d, want 5", got)
	}
}

func TestParse_Unsupported(t *testing.T) {
	if _, err := Parse(strings.NewReader("x"), "notes.txt"); err != ErrUnsupportedFormat {
		t.Errorf("Parse() error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Parse(strings.NewReader("not a zip"), "legacy.xlsx"); err == nil {
		t.Error("Parse() of a corrupt workbook should fail")
	}
}

func TestRow_Validate(t *testing.T) {
	valid := Row{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "supersecret", Role: "Developer"}

	tests := []struct {
		name      string
		mutate    func(r *Row)
		wantField string
		wantMsg   string
	}{
		{name: "valid", mutate: func(*Row) {}},
		{name: "missing first name", mutate: func(r *Row) { r.FirstName = " " }, wantField: "firstName", wantMsg: "firstName is required"},
		{name: "missing role reported after email", mutate: func(r *Row) { r.Email = ""; r.Role = "" }, wantField: "email", wantMsg: "email is required"},
		{name: "bad email", mutate: func(r *Row) { r.Email = "ada@" }, wantField: "email", wantMsg: "Invalid email format"},
		{name: "bad role", mutate: func(r *Row) { r.Role = "Intern" }, wantField: "role", wantMsg: "Role must be Manager or Developer"},
		{name: "short password", mutate: func(r *Row) { r.Password = "short" }, wantField: "password", wantMsg: "Password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			got := row.Validate(RowNumber(2))
			if tt.wantField == "" {
				if got != nil {
					t.Fatalf("Validate() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Validate() = nil, want %s error", tt.wantField)
			}
			if got.Row != 4 || got.Field != tt.wantField || got.Message != tt.wantMsg {
				t.Errorf("Validate() = %+v", got)
			}
			if _, ok := got.Data["password"]; ok {
				t.Error("error data must not carry the password")
			}
		})
	}
}
