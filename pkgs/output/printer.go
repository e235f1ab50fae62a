package output

import "fmt"

// Printer abstracts console output so controller actions stay testable.
type Printer interface {
	Printf(format string, a ...any) (n int, err error)
}

type ConsolePrinter struct{}

func (c ConsolePrinter) Printf(format string, a ...any) (n int, err error) {
	return fmt.Printf(format, a...)
}

// BufferPrinter collects output for assertions in tests.
type BufferPrinter struct {
	Lines []string
}

func (b *BufferPrinter) Printf(format string, a ...any) (n int, err error) {
	s := fmt.Sprintf(format, a...)
	b.Lines = append(b.Lines, s)
	return len(s), nil
}
