package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nexusboard/nexusboard/pkg/format"
)

type formatCmd struct {
	INR      inrCmd      `cmd:"" name:"inr" help:"Whole rupees with lakh/crore grouping (₹1,23,456)."`
	Full     fullCmd     `cmd:"" help:"Rupees with two decimals (₹1,23,456.78)."`
	Compact  compactCmd  `cmd:"" help:"Abbreviated amount (₹1.2 Cr, ₹4.5 L, ₹3.2K)."`
	Date     dateCmd     `cmd:"" help:"DD/MM/YYYY in the display location."`
	DateTime dateTimeCmd `cmd:"" name:"datetime" help:"DD/MM/YYYY HH:MM in the display location."`
	FY       fyCmd       `cmd:"" name:"fy" help:"Financial year containing a date (defaults to today)."`
	Icon     iconCmd     `cmd:"" help:"Emoji for an expense category."`
}

type inrCmd struct {
	Amount string `arg:"" help:"Amount to format."`
}

func (c *inrCmd) Run(context.Context) error {
	_, err := fmt.Fprintln(stdout, format.FormatINR(c.Amount))
	return err
}

type fullCmd struct {
	Amount string `arg:"" help:"Amount to format."`
}

func (c *fullCmd) Run(context.Context) error {
	_, err := fmt.Fprintln(stdout, format.FormatINRFull(c.Amount))
	return err
}

type compactCmd struct {
	Amount string `arg:"" help:"Amount to format."`
}

func (c *compactCmd) Run(context.Context) error {
	_, err := fmt.Fprintln(stdout, format.FormatCompact(c.Amount))
	return err
}

type locationFlag struct {
	Location string `default:"Asia/Kolkata" help:"IANA time zone used for display."`
}

func (l locationFlag) formatter() (format.Formatter, error) {
	if l.Location == "" || l.Location == "Asia/Kolkata" {
		return format.NewFormatter(format.IndiaLocation()), nil
	}
	loc, err := time.LoadLocation(l.Location)
	if err != nil {
		return format.Formatter{}, fmt.Errorf("nexusboard: location %q: %w", l.Location, err)
	}
	return format.NewFormatter(loc), nil
}

type dateCmd struct {
	locationFlag
	Value string `arg:"" help:"RFC 3339 timestamp or YYYY-MM-DD date."`
}

func (c *dateCmd) Run(context.Context) error {
	f, err := c.formatter()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, f.Date(c.Value))
	return err
}

type dateTimeCmd struct {
	locationFlag
	Value string `arg:"" help:"RFC 3339 timestamp or YYYY-MM-DD date."`
}

func (c *dateTimeCmd) Run(context.Context) error {
	f, err := c.formatter()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, f.DateTime(c.Value))
	return err
}

type fyCmd struct {
	locationFlag
	Value string `arg:"" optional:"" help:"Date inside the financial year."`
}

func (c *fyCmd) Run(context.Context) error {
	f, err := c.formatter()
	if err != nil {
		return err
	}
	at := now().In(f.Location())
	if c.Value != "" {
		parsed, ok := f.Parse(c.Value)
		if !ok {
			return fmt.Errorf("nexusboard: cannot parse date %q", c.Value)
		}
		at = parsed
	}
	fy := format.CurrentFY(at)
	_, err = fmt.Fprintf(stdout, "%s\t%s\t%s\n", fy.Label, fy.StartDate(), fy.EndDate())
	return err
}

type iconCmd struct {
	Category string `arg:"" help:"Expense category, e.g. \"Food Delivery\"."`
}

func (c *iconCmd) Run(context.Context) error {
	_, err := fmt.Fprintln(stdout, format.CategoryIcon(c.Category))
	return err
}
