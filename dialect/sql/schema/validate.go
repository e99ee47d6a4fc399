package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex allows dropping indexes without error.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateDiff validates moving from the current to the desired tables.
// It returns errors for breaking changes and warnings for operations that
// may fail on existing data. Results follow the order of the tables.
//
//	result := schema.ValidateDiff(previous, next)
//	if result.HasBreakingChanges() {
//	    log.Fatal("breaking changes detected:\n", result)
//	}
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	desiredMap := make(map[string]*Table, len(desired))
	for _, t := range desired {
		desiredMap[t.Name] = t
	}
	for _, t := range current {
		next, ok := desiredMap[t.Name]
		if !ok {
			result.add(&ValidationError{
				Table:    t.Name,
				Message:  "table will be dropped",
				Breaking: true,
			}, cfg.allowDropTable)
			continue
		}
		validateTableDiff(t, next, cfg, result)
	}
	return result
}

func validateTableDiff(current, desired *Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); !ok {
			result.add(&ValidationError{
				Table:    current.Name,
				Column:   c.Name,
				Message:  "column will be dropped",
				Breaking: true,
			}, cfg.allowDropColumn)
		}
	}
	for _, next := range desired.Columns {
		prev, ok := current.Column(next.Name)
		if !ok {
			if !next.Nullable && next.Default == nil && !next.Increment {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.Name,
					Column:  next.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		if prev.typeName() != next.typeName() {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  next.Name,
				Message: fmt.Sprintf("column type changing from %s to %s", prev.typeName(), next.typeName()),
			})
		}
		if prev.Nullable && !next.Nullable {
			result.add(&ValidationError{
				Table:    current.Name,
				Column:   next.Name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			}, cfg.allowNullToNotNull)
		}
		if prev.Size > 0 && next.Size > 0 && next.Size < prev.Size {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  next.Name,
				Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", prev.Size, next.Size),
			})
		}
		if !prev.Unique && next.Unique {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  next.Name,
				Message: "adding UNIQUE constraint may fail if duplicate values exist",
			})
		}
	}
	for _, idx := range current.Indexes {
		if desired.index(idx.Name) == nil {
			result.add(&ValidationError{
				Table:   current.Name,
				Message: fmt.Sprintf("index %q will be dropped", idx.Name),
			}, cfg.allowDropIndex)
		}
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	if len(t.PrimaryKey) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	names := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if names[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		names[c.Name] = true
	}
	indexes := make(map[string]bool, len(t.Indexes)+len(t.Uniques))
	for _, idx := range append(append([]*Index{}, t.Indexes...), t.Uniques...) {
		if indexes[idx.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name),
			})
		}
		indexes[idx.Name] = true
		for _, col := range idx.Columns {
			if !names[col.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, col.Name),
				})
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, col := range fk.Columns {
			if !names[col.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent column %q", col.Name),
				})
			}
		}
	}
	return result
}

// ValidateSchema validates all tables and the foreign keys between them.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		if _, ok := byName[t.Name]; ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		} else {
			byName[t.Name] = t
		}
		tr := ValidateTable(t)
		result.Errors = append(result.Errors, tr.Errors...)
		result.Warnings = append(result.Warnings, tr.Warnings...)
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			ref, ok := byName[fk.RefTable.Name]
			if !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable.Name),
				})
				continue
			}
			for i, col := range fk.RefColumns {
				target, ok := ref.Column(col.Name)
				if !ok {
					result.Errors = append(result.Errors, &ValidationError{
						Table:   t.Name,
						Message: fmt.Sprintf("foreign key references non-existent column %q of table %q", col.Name, ref.Name),
					})
					continue
				}
				if i < len(fk.Columns) && fk.Columns[i].typeName() != target.typeName() {
					result.Errors = append(result.Errors, &ValidationError{
						Table:   t.Name,
						Column:  fk.Columns[i].Name,
						Message: fmt.Sprintf("foreign key type %s does not match %s.%s type %s", fk.Columns[i].typeName(), ref.Name, target.Name, target.typeName()),
					})
				}
			}
		}
	}
	return result
}

func (r *ValidationResult) add(err *ValidationError, allowed bool) {
	if allowed {
		r.Warnings = append(r.Warnings, err)
	} else {
		r.Errors = append(r.Errors, err)
	}
}

func (c *Column) typeName() string {
	switch {
	case c.JSON:
		return "json"
	case c.Format != "":
		return c.Type + "/" + c.Format
	}
	return c.Type
}

func (t *Table) index(name string) *Index {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}
