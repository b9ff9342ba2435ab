package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Model generation:

Set GENERATE_MODELS=true and start the binary. The tables are migrated, a report of
database columns that no model field maps to is logged, and typed query helpers are
written to ./generated. The process exits afterwards.
*/

func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return err
	}

	if err := ColumnMismatchReport(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	log.Info().Str("outPath", outPath).Msg("Model generation complete")
	return nil
}

// ColumnMismatchReport logs the columns of each model's table that no model field maps to.
func ColumnMismatchReport(db *gorm.DB) error {
	total := 0
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model %T: %w", model, err)
		}

		columns, err := tableColumns(db, stmt.Schema.Table)
		if err != nil {
			return err
		}

		missing := findColumnMismatches(columns, stmt.Schema)
		total += len(missing)

		event := log.Info()
		if len(missing) > 0 {
			event = log.Warn()
		}
		event.Str("table", stmt.Schema.Table).Strs("unmapped", missing).Msg("Column report")
	}

	log.Info().Int("unmappedColumns", total).Msg("Column report complete")
	return nil
}

func tableColumns(db *gorm.DB, table string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	columns := make([]string, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// findColumnMismatches returns the database columns with no matching field in s, sorted.
func findColumnMismatches(columns []string, s *schema.Schema) []string {
	var missing []string
	for _, column := range columns {
		if _, ok := s.FieldsByDBName[column]; !ok {
			missing = append(missing, column)
		}
	}
	sort.Strings(missing)
	return missing
}
