package hints

import (
	"fmt"
	"strings"

	"github.com/abhisek/sleuth/internal/api"
)

// Rule produces a hint from local signals, or "" when it does not apply.
type Rule interface {
	Name() string
	Hint(in *Input) string
}

// DefaultRules returns the local rules in priority order. The last one
// always applies.
func DefaultRules() []Rule {
	return []Rule{
		emptyQuery{},
		unknownName{},
		syntaxError{},
		missingJoin{},
		missingFilter{},
		objective{},
	}
}

// RunRules returns the first hint a rule produces and the rule's name.
func RunRules(rules []Rule, in *Input) (string, string) {
	for _, r := range rules {
		if h := r.Hint(in); h != "" {
			return h, r.Name()
		}
	}
	return "", ""
}

type emptyQuery struct{}

func (emptyQuery) Name() string { return "empty-query" }

func (emptyQuery) Hint(in *Input) string {
	if strings.TrimSpace(in.SQL) != "" {
		return ""
	}
	return fmt.Sprintf("Начните с простого: SELECT * FROM %s, и посмотрите, какие данные есть в таблице.", firstTable(in))
}

type unknownName struct{}

func (unknownName) Name() string { return "unknown-name" }

func (unknownName) Hint(in *Input) string {
	e := strings.ToLower(in.Error)
	switch {
	case strings.Contains(e, "invalid column"), strings.Contains(e, "no such column"):
		return "Такого столбца нет. Доступные столбцы: " + strings.Join(columnNames(in.Schema), ", ") + "."
	case strings.Contains(e, "invalid table"), strings.Contains(e, "no such table"):
		return "Такой таблицы нет. В этом деле доступны: " + strings.Join(tableNames(in), ", ") + "."
	}
	return ""
}

type syntaxError struct{}

func (syntaxError) Name() string { return "syntax" }

func (syntaxError) Hint(in *Input) string {
	e := strings.ToLower(in.Error)
	if !strings.Contains(e, "syntax") {
		return ""
	}
	return "Проверьте синтаксис: запятые между столбцами, кавычки вокруг строк и дат, AND между условиями."
}

type missingJoin struct{}

func (missingJoin) Name() string { return "missing-join" }

func (missingJoin) Hint(in *Input) string {
	if len(in.Case.Tables) < 2 || strings.Contains(strings.ToUpper(in.SQL), "JOIN") {
		return ""
	}
	return fmt.Sprintf("Ответ лежит сразу в нескольких таблицах (%s). Подумайте, по какому столбцу их можно соединить через JOIN.",
		strings.Join(in.Case.Tables, ", "))
}

type missingFilter struct{}

func (missingFilter) Name() string { return "missing-filter" }

func (missingFilter) Hint(in *Input) string {
	answer := strings.ToUpper(in.Case.Solution.Answer)
	if !strings.Contains(answer, "WHERE") || strings.Contains(strings.ToUpper(in.SQL), "WHERE") {
		return ""
	}
	return "Запрос возвращает слишком много строк. Отберите нужные с помощью WHERE."
}

type objective struct{}

func (objective) Name() string { return "objective" }

func (objective) Hint(in *Input) string {
	if len(in.Case.Objectives) == 0 {
		return "Перечитайте описание дела и сравните его с результатом запроса."
	}
	return "Перечитайте задание: " + in.Case.Objectives[0]
}

func firstTable(in *Input) string {
	if names := tableNames(in); len(names) > 0 {
		return names[0]
	}
	return "..."
}

func tableNames(in *Input) []string {
	if len(in.Case.Tables) > 0 {
		return in.Case.Tables
	}
	names := make([]string, len(in.Schema))
	for i, t := range in.Schema {
		names[i] = t.TableName
	}
	return names
}

func columnNames(schema []api.TableSchema) []string {
	var names []string
	for _, t := range schema {
		for _, c := range t.Columns {
			if len(schema) > 1 {
				names = append(names, t.TableName+"."+c.Name)
			} else {
				names = append(names, c.Name)
			}
		}
	}
	return names
}
