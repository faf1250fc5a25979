package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableSessions = "response_sessions"
	tableAnswers  = "answers"
	tableExposure = "question_exposure"
)

var (
	// sessionsColumns holds the columns for the "response_sessions" table.
	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "subject_id", Type: field.TypeString},
		{Name: "version", Type: field.TypeString},
		{Name: "status", Type: field.TypeEnum, Enums: []string{string(StatusInProgress), string(StatusCompleted)}, Default: string(StatusInProgress)},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "responsesession_subject_id_version",
				Unique:  true,
				Columns: []*schema.Column{sessionsColumns[1], sessionsColumns[2]},
			},
		},
	}

	// answersColumns holds the columns for the "answers" table.
	answersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "session_id", Type: field.TypeString, Size: 36},
		{Name: "question_id", Type: field.TypeString},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	answersTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    answersColumns,
		PrimaryKey: []*schema.Column{answersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_response_sessions_answers",
				Columns:    []*schema.Column{answersColumns[1]},
				RefColumns: []*schema.Column{sessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "answer_session_id_question_id",
				Unique:  true,
				Columns: []*schema.Column{answersColumns[1], answersColumns[2]},
			},
		},
	}

	// exposureColumns holds the columns for the "question_exposure" table.
	exposureColumns = []*schema.Column{
		{Name: "question_id", Type: field.TypeString},
		{Name: "times_shown", Type: field.TypeInt, Default: 0},
	}
	exposureTable = &schema.Table{
		Name:       tableExposure,
		Columns:    exposureColumns,
		PrimaryKey: []*schema.Column{exposureColumns[0]},
	}

	tables = []*schema.Table{sessionsTable, answersTable, exposureTable}
)

func init() {
	answersTable.ForeignKeys[0].RefTable = sessionsTable
}

// migrate creates or updates the schema in place.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
