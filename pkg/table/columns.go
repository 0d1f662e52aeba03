package table

import (
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Default column names.
const (
	DefaultKeyColumn   = "isbn_id"
	DefaultLabelColumn = "cluster"
	DefaultLeftColumn  = "left_isbn"
	DefaultRightColumn = "right_isbn"
)

// Columns names the columns read from and written to tables.
type Columns struct {
	Key    string `toml:"key" json:"key"`
	Label  string `toml:"label" json:"label"`   // empty: derive labels from Record or Key
	Record string `toml:"record" json:"record"` // used only when Label is empty
	Left   string `toml:"left" json:"left"`
	Right  string `toml:"right" json:"right"`
}

// DefaultColumns returns the isbn_id/cluster and left_isbn/right_isbn layout.
func DefaultColumns() Columns {
	return Columns{
		Key:   DefaultKeyColumn,
		Label: DefaultLabelColumn,
		Left:  DefaultLeftColumn,
		Right: DefaultRightColumn,
	}
}

// Validate checks every configured column name.
func (c Columns) Validate() error {
	for _, name := range []string{c.Key, c.Left, c.Right} {
		if err := errs.ValidateColumnName(name); err != nil {
			return err
		}
	}
	for _, name := range []string{c.Label, c.Record} {
		if name == "" {
			continue
		}
		if err := errs.ValidateColumnName(name); err != nil {
			return err
		}
	}
	if c.Left == c.Right {
		return errs.New(errs.ErrCodeInvalidColumn, "edge columns must differ, both are %q", c.Left)
	}
	return nil
}

// OutputLabel returns the column name used for labels in written tables.
func (c Columns) OutputLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return DefaultLabelColumn
}
