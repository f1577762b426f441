package factory

import "fmt"

type Document interface {
	Kind() string
	Open() string
	Save(content string) (string, error)
}

type PDF struct{}
type Word struct{}
type Excel struct{}

func (PDF) Kind() string   { return KindPDF }
func (Word) Kind() string  { return KindWord }
func (Excel) Kind() string { return KindExcel }

func (PDF) Open() string   { return "opened PDF document" }
func (Word) Open() string  { return "opened Word document" }
func (Excel) Open() string { return "opened Excel document" }

func (PDF) Save(content string) (string, error) {
	return fmt.Sprintf("saved content to PDF: %s", content), nil
}

func (Word) Save(content string) (string, error) {
	return fmt.Sprintf("saved content to Word: %s", content), nil
}

func (Excel) Save(content string) (string, error) {
	return fmt.Sprintf("saved content to Excel: %s", content), nil
}
