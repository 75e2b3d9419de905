package engine

import "github.com/abhisek/sleuth/internal/api"

type columnDef struct {
	name    string
	typ     string
	primary bool
}

type tableDef struct {
	name    string
	title   string
	columns []columnDef
}

// tableDefs describes the dataset as the player sees it. Dates and times
// are declared DATE and TIME here although the dataset stores ISO text.
var tableDefs = map[string]tableDef{
	"camp_logs": {
		name:  "camp_logs",
		title: "Журнал патрулирования (camp_logs)",
		columns: []columnDef{
			{"log_id", "INTEGER", true},
			{"guard_name", "VARCHAR(100)", false},
			{"date", "DATE", false},
			{"shift", "VARCHAR(50)", false},
			{"action", "VARCHAR(50)", false},
			{"time", "TIME", false},
			{"notes", "TEXT", false},
		},
	},
	"finances": {
		name:  "finances",
		title: "Финансовые операции (finances)",
		columns: []columnDef{
			{"trans_id", "INTEGER", true},
			{"recipient_name", "VARCHAR(100)", false},
			{"amount", "INTEGER", false},
			{"transaction_date", "DATE", false},
		},
	},
	"movement_records": {
		name:  "movement_records",
		title: "Записи о перемещениях (movement_records)",
		columns: []columnDef{
			{"move_id", "INTEGER", true},
			{"main_person", "VARCHAR(100)", false},
			{"companion", "VARCHAR(100)", false},
			{"route", "VARCHAR(100)", false},
			{"date", "DATE", false},
			{"notes", "TEXT", false},
		},
	},
	"secret_negotiations": {
		name:  "secret_negotiations",
		title: "Тайные переговоры (secret_negotiations)",
		columns: []columnDef{
			{"neg_id", "INTEGER", true},
			{"person_name", "VARCHAR(100)", false},
			{"contact_type", "VARCHAR(50)", false},
			{"date", "DATE", false},
			{"details", "TEXT", false},
		},
	},
}

func (t tableDef) schema() api.TableSchema {
	cols := make([]api.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = api.Column{
			Name:       c.name,
			Type:       c.typ,
			IsPrimary:  c.primary,
			IsNullable: !c.primary,
		}
	}
	return api.TableSchema{
		TableName: t.name,
		Title:     "Схема таблицы " + t.name,
		Columns:   cols,
	}
}
