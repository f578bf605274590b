package locale

var russian = map[string]string{
	"bo1.title": "BEST OF 1",
	"bo1.intro": `
Привет, {m_teamA} и {m_teamB}!

Этот текстовый канал доступен только капитанам команд и судьям турнира. Здесь обсуждается всё, что касается матча между {teamA} и {teamB}.

Карты банятся командой ` + "`!ban`" + ` поочерёдно, пока не останется одна. Команда, которая банила не последней, выбирает сторону командой ` + "`!side xxxx`" + ` (attack или defend), где

attack, blackwood - атака
defend, warface - защита.
{match_result_upload}`,

	"bo2.title": "BEST OF 2",
	"bo2.intro": `
Привет, {m_teamA} и {m_teamB}!

Этот текстовый канал доступен только капитанам команд и судьям турнира. Здесь обсуждается всё, что касается матча между {teamA} и {teamB}.

Выбор и бан карт производится командами ` + "`!pick`" + `, ` + "`!ban`" + ` и ` + "`!side`" + ` в порядке, указанном ниже. Каждая команда выбирает сторону на карте, выбранной соперником, используя ` + "`!side xxxx`" + ` (attack или defend).
{match_result_upload}`,

	"bo3.title": "BEST OF 3",
	"bo3.intro": `
Привет, {m_teamA} и {m_teamB}!

Этот текстовый канал доступен только капитанам команд и судьям турнира. Здесь обсуждается всё, что касается матча между {teamA} и {teamB}.

Выбор и бан карт производится командами ` + "`!pick`" + `, ` + "`!ban`" + ` и ` + "`!side`" + ` в порядке, указанном ниже, пока не останется одна карта. Она станет решающей в случае ничьей по итогам первых двух карт.
{match_result_upload}`,

	"bo5.title": "BEST OF 5",
	"bo5.intro": `
Привет, {m_teamA} и {m_teamB}!

Этот текстовый канал доступен только капитанам команд и судьям турнира. Здесь обсуждается всё, что касается матча между {teamA} и {teamB}.

Команды поочерёдно выбирают карты, пока не останется одна. Она станет решающей. Затем стороны выбираются командой ` + "`!side xxxx`" + ` (attack или defend).
{match_result_upload}`,

	"match.result_upload": `
Чтобы загрузить итоги матча, перейдите по ссылке ниже, нажмите "Результаты" и введите данные:
{url}
- Best-of-1: итоги игры (например, 11-3);
- Остальные форматы: количество выигранных карт (например, 2-1);
- Если противник не явился, оставьте поля пустыми и отметьте "Противник не появился";
- Если вы ошиблись при заполнении, свяжитесь с судьёй.
`,

	"match.sequence_over":         "Выбор и бан карт завершены.",
	"match.not_your_turn":         "Сейчас не твоя очередь ({action}).",
	"match.invalid_turn":          "Сейчас очередь не {action}, а **{expected}**.",
	"match.invalid_side":          "Некорректная сторона.",
	"match.invalid_map":           "Что-то пошло не так, вероятно название карты введено некорректно.",
	"match.already_banned":        "Эта карта уже забанена, выбери другую.",
	"match.already_picked":        "Эта карта уже выбрана, выбери другую.",
	"match.nothing_to_undo":       "Нечего отменять.",
	"match.sequence_title":        "Выбор и бан карт",
	"match.status_title":          "Текущий статус",
	"match.turn":                  "Твоя очередь",
	"match.use":                   "Использовать",
	"match.ban_sequence_finished": "Бан карт завершен!",
	"match.sequence_finished":     "Выбор и бан карт завершены!",
	"match.map":                   "Карта",
	"match.tiebreaker":            "Решающая карта",
	"match.good_luck":             "Удачи!",
	"match.warning":               "Не забудьте сделать скриншот итогов матча!",
	"match.closed":                "Судья закрыл выбор карт.",

	"side.attacking": "атака",
	"side.defending": "защита",

	"push.turn_title":     "Твоя очередь: {teamA} против {teamB}",
	"push.turn_body":      "{party}, выбери действие: {action}.",
	"push.finished_title": "Карты выбраны: {teamA} против {teamB}",
	"push.finished_body":  "{maps}. Удачи!",
}
