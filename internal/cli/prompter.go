package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/pocketbook/internal/model"
)

// ErrInputTerminated is returned when input ends before a prompt is answered.
var ErrInputTerminated = errors.New("input terminated")

// newCategoryKey selects "create a new category" in the category menu.
const newCategoryKey = "n"

// Prompter asks for missing transaction fields and confirmations on the terminal.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
}

// NewPrompter creates a prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// CategoryLister returns the categories of one partition.
type CategoryLister func(model.CategoryType) []model.Category

// CompleteTransaction prompts for every field draft leaves empty. The
// returned choice is an existing category when draft names one.
func (p *Prompter) CompleteTransaction(ctx context.Context, draft model.TransactionInput, list CategoryLister, today model.Date) (model.TransactionInput, model.CategoryChoice, error) {
	if draft.Type == "" {
		choice, err := p.promptChoice(ctx, "Type [income/expense]", []string{"income", "expense", "i", "e"})
		if err != nil {
			return draft, model.CategoryChoice{}, err
		}
		draft.Type = model.TypeExpense
		if strings.HasPrefix(choice, "i") {
			draft.Type = model.TypeIncome
		}
	}

	if draft.Amount == 0 {
		amount, err := p.promptAmount(ctx)
		if err != nil {
			return draft, model.CategoryChoice{}, err
		}
		draft.Amount = amount
	}

	if draft.Date == "" {
		date, err := p.promptLine(ctx, fmt.Sprintf("Date [%s]", today))
		if err != nil {
			return draft, model.CategoryChoice{}, err
		}
		if date == "" {
			date = today.String()
		}
		draft.Date = date
	}

	if draft.Description == "" {
		desc, err := p.promptLine(ctx, "Description (optional)")
		if err != nil {
			return draft, model.CategoryChoice{}, err
		}
		draft.Description = desc
	}

	if draft.Category != "" {
		return draft, model.ExistingCategory(draft.Category), nil
	}

	choice, err := p.PromptCategory(ctx, list(draft.Type.CategoryType()))
	return draft, choice, err
}

// PromptCategory shows a numbered menu of categories plus an entry for
// creating a new one.
func (p *Prompter) PromptCategory(ctx context.Context, categories []model.Category) (model.CategoryChoice, error) {
	if _, err := fmt.Fprintln(p.writer, FormatInfo("Categories:")); err != nil {
		return model.CategoryChoice{}, fmt.Errorf("failed to write category header: %w", err)
	}

	valid := make([]string, 0, len(categories)+1)
	for i, cat := range categories {
		key := strconv.Itoa(i + 1)
		valid = append(valid, key)
		if _, err := fmt.Fprintf(p.writer, "  %s. %s\n", BoldStyle.Render(key), cat.Name); err != nil {
			slog.Warn("Failed to write category option", "error", err)
		}
	}
	valid = append(valid, newCategoryKey)
	if _, err := fmt.Fprintf(p.writer, "  %s. + New category\n", BoldStyle.Render(newCategoryKey)); err != nil {
		slog.Warn("Failed to write category option", "error", err)
	}

	choice, err := p.promptChoice(ctx, "Category", valid)
	if err != nil {
		return model.CategoryChoice{}, err
	}

	if choice == newCategoryKey {
		name, err := p.promptCustomCategory(ctx)
		if err != nil {
			return model.CategoryChoice{}, err
		}
		return model.NewCategory(name), nil
	}

	i, _ := strconv.Atoi(choice)
	return model.ExistingCategory(categories[i-1].ID), nil
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.promptLine(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (p *Prompter) promptLine(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputTerminated
		}
		return "", err
	}
	return line, nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		input, err := p.promptLine(ctx, prompt)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) promptAmount(ctx context.Context) (float64, error) {
	for {
		input, err := p.promptLine(ctx, "Amount")
		if err != nil {
			return 0, err
		}

		amount, err := strconv.ParseFloat(strings.ReplaceAll(input, ",", ""), 64)
		if err == nil && amount != 0 {
			return amount, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Enter a whole number, e.g. 1200.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) promptCustomCategory(ctx context.Context) (string, error) {
	for {
		name, err := p.promptLine(ctx, "New category name")
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Category cannot be empty. Please try again.")); err != nil {
			slog.Warn("Failed to write empty category error", "error", err)
		}
	}
}
