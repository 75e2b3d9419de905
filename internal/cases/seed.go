package cases

// defaultRegistry is built from seedCases at package init. A seed that fails
// validation is a build-time content bug, so init panics.
var defaultRegistry = mustRegistry(seedCases)

func mustRegistry(cs []Case) *Registry {
	r, err := NewRegistry(cs)
	if err != nil {
		panic(err)
	}
	return r
}

var seedCases = []Case{
	{
		ID:          "case-000",
		Title:       "Накануне битвы",
		Difficulty:  1,
		XPReward:    50,
		Category:    CategoryBeginner,
		Description: "Лагерь на Куликовом поле. Прежде чем начать расследование, осмотритесь в журнале караула.",
		Brief: `Сентябрь 1380 года. Войско стоит лагерем у Дона, до битвы остаются считанные дни.
Воевода поручает вам навести порядок в караульной службе и для начала просто прочитать журнал патрулирования.

Журнал хранится в таблице camp_logs.`,
		Objectives: []string{
			"Открыть журнал патрулирования",
			"Вывести все записи таблицы camp_logs",
		},
		Solution: Solution{
			Answer:         "SELECT * FROM camp_logs",
			SuccessMessage: "Журнал открыт. Теперь вы знаете, кто и когда стоял в карауле.",
			Explanation:    "SELECT * выбирает все столбцы, а отсутствие WHERE означает, что возвращаются все строки таблицы.",
		},
		Tables: []string{"camp_logs"},
	},
	{
		ID:          "case-001",
		Title:       "Ночной караул",
		Difficulty:  1,
		XPReward:    100,
		Category:    CategoryBeginner,
		Description: "Знамя пропало ночью. Выясните, кто нёс ночную смену 6 сентября.",
		Brief: `Утром 7 сентября обнаружилось, что великокняжеское знамя исчезло из шатра.
Стража клянётся, что ночь прошла спокойно. Проверьте, кто заступил в ночную смену накануне.`,
		Objectives: []string{
			"Найти записи за 6 сентября 1380 года",
			"Оставить только ночную смену",
		},
		Solution: Solution{
			Answer:         "SELECT * FROM camp_logs WHERE date = '1380-09-06' AND shift = 'night'",
			SuccessMessage: "Вы установили всех, кто нёс ночной караул.",
			Explanation:    "Два условия, объединённые через AND, оставляют только строки, где совпадают и дата, и смена.",
		},
		Tables: []string{"camp_logs"},
	},
	{
		ID:          "case-002",
		Title:       "Покинувшие пост",
		Difficulty:  2,
		XPReward:    150,
		Category:    CategoryBeginner,
		Description: "Кто-то уходил из лагеря в ночь исчезновения знамени.",
		Brief: `Среди ночной стражи кто-то покидал пост. Журнал фиксирует каждый выход из лагеря.
Найдите все выходы, отмеченные 7 сентября.`,
		Objectives: []string{
			"Найти все записи с действием exit",
			"Ограничить поиск датой 7 сентября 1380 года",
		},
		Solution: Solution{
			Answer:         "SELECT * FROM camp_logs WHERE action = 'exit' AND date = '1380-09-07'",
			SuccessMessage: "Список покинувших лагерь готов. Двое ушли глубокой ночью.",
			Explanation:    "Фильтр по действию и дате показывает всех, кто выходил из лагеря в нужный день.",
		},
		Tables: []string{"camp_logs"},
	},
	{
		ID:          "case-003",
		Title:       "Тайные расчёты",
		Difficulty:  2,
		XPReward:    200,
		Category:    CategoryIntermediate,
		Description: "В казначейских покоях обнаружены подозрительные финансовые операции. Необходимо выяснить, кто получил аномально большие выплаты накануне исчезновения знамени.",
		Brief: `Пока в лагере царит суматоха, в тиши казначейских покоев вы слышите о странных финансовых операциях.
Говорят, что в канун исчезновения знамени кто-то получил аномально большую выплату: сумму, которая могла стать платой за измену.

Вы направляетесь к таблице finances, чтобы изучить казённые записи.`,
		Objectives: []string{
			"Найти все выплаты, превышающие 50 монет",
			"Определить получателей крупных выплат за 6 сентября 1380 года",
			"Проанализировать подозрительные финансовые операции",
		},
		Solution: Solution{
			Answer:         "SELECT recipient_name, amount FROM finances WHERE transaction_date = '1380-09-06' AND amount > 50",
			SuccessMessage: "Отлично! Вы обнаружили подозрительные финансовые операции. Теперь можно проанализировать, кто мог быть причастен к заговору.",
			Explanation: `Запрос к таблице finances находит все выплаты больше 50 монет за 6 сентября 1380 года.
Выбор только recipient_name и amount оставляет в результате получателей и размеры подозрительных сумм.`,
		},
		Tables: []string{"finances"},
	},
	{
		ID:          "case-004",
		Title:       "Золото и караул",
		Difficulty:  3,
		XPReward:    300,
		Category:    CategoryIntermediate,
		Description: "Сопоставьте ночные выходы из лагеря с крупными выплатами.",
		Brief: `У вас есть список тех, кто покидал лагерь ночью, и список получателей крупных сумм.
Если это одни и те же люди, заговор становится очевиден. Соедините журнал караула с казёнными записями.`,
		Objectives: []string{
			"Соединить camp_logs и finances по имени",
			"Оставить выходы 7 сентября после полуночи",
			"Оставить выплаты больше 50 монет за 6 сентября",
		},
		Solution: Solution{
			Answer: `SELECT c.guard_name, c.date, c.time, f.amount
FROM camp_logs c
JOIN finances f ON c.guard_name = f.recipient_name
WHERE c.date = '1380-09-07'
  AND c.time > '00:00:00'
  AND f.transaction_date = '1380-09-06'
  AND f.amount > 50
  AND c.action = 'exit'`,
			SuccessMessage: "Двое стражников получили деньги и ушли из лагеря той же ночью.",
			Explanation:    "JOIN связывает строки двух таблиц по совпадающему имени, а условия WHERE оставляют только подозрительные совпадения.",
		},
		Tables:   []string{"camp_logs", "finances"},
		SubCases: []string{"case-002", "case-003"},
	},
	{
		ID:          "case-005",
		Title:       "Переправа",
		Difficulty:  3,
		XPReward:    300,
		Category:    CategoryAdvanced,
		Description: "Знамя унесли за реку. Выясните, кто и с кем переправлялся 7 сентября.",
		Brief: `На берегу Дона нашли обрывок золотой бахромы. Записи о перемещениях должны показать,
кто шёл к реке или искал брод в ночь пропажи.`,
		Objectives: []string{
			"Найти перемещения 7 сентября 1380 года",
			"Оставить маршруты через реку или упоминания брода",
			"Вывести основного участника, спутника и заметки",
		},
		Solution: Solution{
			Answer: `SELECT main_person, companion, notes
FROM movement_records
WHERE date = '1380-09-07'
  AND (route = 'Река' OR notes LIKE '%брод%')`,
			SuccessMessage: "Путь знамени найден: его унесли к броду.",
			Explanation:    "Скобки задают порядок вычисления: дата должна совпасть всегда, а маршрут или заметка достаточно одного из условий.",
		},
		Tables: []string{"movement_records"},
	},
	{
		ID:          "case-006",
		Title:       "Тайные переговоры",
		Difficulty:  4,
		XPReward:    500,
		Category:    CategoryAdvanced,
		Description: "Найдите, кто в день выплаты вёл тайные переговоры с врагом.",
		Brief: `Последний шаг. В донесениях разведки перечислены тайные контакты с людьми Мамая.
Сопоставьте их с казёнными выплатами: предатель получил деньги в тот же день, когда выходил на связь.`,
		Objectives: []string{
			"Соединить secret_negotiations и finances по имени",
			"Совместить дату контакта с датой выплаты",
			"Исключить записи без реального контакта",
		},
		Solution: Solution{
			Answer: `SELECT sn.person_name, sn.date, f.amount, sn.details
FROM secret_negotiations sn
JOIN finances f ON sn.person_name = f.recipient_name
WHERE f.amount > 50
  AND sn.date = f.transaction_date
  AND sn.contact_type IS NOT NULL
  AND sn.contact_type <> 'none'`,
			SuccessMessage: "Заговор раскрыт. Знамя будет возвращено до начала битвы.",
			Explanation:    "Условие по дате внутри WHERE связывает контакт и выплату одного дня, а IS NOT NULL отсеивает неустановленные контакты.",
		},
		Tables:   []string{"secret_negotiations", "finances"},
		SubCases: []string{"case-003", "case-005"},
	},
}
