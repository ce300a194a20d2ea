// Built-in rule tables for the commitment classifier.
//
// Patterns are lowercase substrings; intra-group order matters (phrase rules
// before bare unit rules, longer phrases before their sub-phrases). The set
// is a curated heuristic, not a linguistic inventory: it covers the phrases
// support agents actually type in the channels this engine serves.
package detect

// builtinVariants returns the default rule set: Russian Cyrillic, Uzbek
// Latin, Uzbek Cyrillic, and an English fallback, evaluated in that order.
func builtinVariants() []Variant {
	return []Variant{
		{
			Tag: LangRussian,
			Time: []Rule{
				{Pattern: "завтра утром", Type: TypeTime},
				{Pattern: "завтра с утра", Type: TypeTime},
				{Pattern: "послезавтра", Type: TypeTime},
				{Pattern: "завтра", Type: TypeTime},
				{Pattern: "сегодня", Type: TypeTime},
				{Pattern: "полчаса", Type: TypeTime},
				{Pattern: "через час", Type: TypeTime},
				{Pattern: "в течение часа", Type: TypeTime},
				{Pattern: "до конца дня", Type: TypeTime},
				{Pattern: "к концу дня", Type: TypeTime},
				{Pattern: "к вечеру", Type: TypeTime},
				{Pattern: "до вечера", Type: TypeTime},
				{Pattern: "к обеду", Type: TypeTime},
				{Pattern: "до обеда", Type: TypeTime},
				{Pattern: "с утра", Type: TypeTime},
				{Pattern: "утром", Type: TypeTime},
				{Pattern: "в ближайшее время", Type: TypeTime},
				{Pattern: "скоро", Type: TypeTime},
				{Pattern: "минут", Type: TypeTime, NeedsNumber: true},
				{Pattern: "час", Type: TypeTime, NeedsNumber: true},
			},
			Action: []Rule{
				{Pattern: "я проверю", Type: TypeAction},
				{Pattern: "проверю", Type: TypeAction},
				{Pattern: "проверим", Type: TypeAction},
				{Pattern: "исправлю", Type: TypeAction},
				{Pattern: "исправим", Type: TypeAction},
				{Pattern: "сделаю", Type: TypeAction},
				{Pattern: "сделаем", Type: TypeAction},
				{Pattern: "посмотрю", Type: TypeAction},
				{Pattern: "уточню", Type: TypeAction},
				{Pattern: "решим", Type: TypeAction},
				{Pattern: "отвечу", Type: TypeAction},
				{Pattern: "напишу", Type: TypeAction},
				{Pattern: "вернусь с ответом", Type: TypeAction},
			},
			Vague: []Rule{
				{Pattern: "минуточку", Type: TypeVague, Vague: true},
				{Pattern: "минутку", Type: TypeVague, Vague: true},
				{Pattern: "секундочку", Type: TypeVague, Vague: true},
				{Pattern: "секунду", Type: TypeVague, Vague: true},
				{Pattern: "один момент", Type: TypeVague, Vague: true},
				{Pattern: "момент", Type: TypeVague, Vague: true},
				{Pattern: "подождите", Type: TypeVague, Vague: true},
				{Pattern: "ожидайте", Type: TypeVague, Vague: true},
				{Pattern: "сейчас", Type: TypeVague, Vague: true},
				{Pattern: "уже занимаемся", Type: TypeVague, Vague: true},
				{Pattern: "работаем над", Type: TypeVague, Vague: true},
				{Pattern: "в процессе", Type: TypeVague, Vague: true},
			},
		},
		{
			Tag: LangUzbekLatin,
			Time: []Rule{
				{Pattern: "ertaga ertalab", Type: TypeTime},
				{Pattern: "ertaga", Type: TypeTime},
				{Pattern: "bugun", Type: TypeTime},
				{Pattern: "yarim soat", Type: TypeTime},
				{Pattern: "bir soat", Type: TypeTime},
				{Pattern: "kun oxirigacha", Type: TypeTime},
				{Pattern: "kechqurungacha", Type: TypeTime},
				{Pattern: "tushlikkacha", Type: TypeTime},
				{Pattern: "ertalab", Type: TypeTime},
				{Pattern: "tez orada", Type: TypeTime},
				{Pattern: "yaqin orada", Type: TypeTime},
				{Pattern: "daqiqa", Type: TypeTime, NeedsNumber: true},
				{Pattern: "minut", Type: TypeTime, NeedsNumber: true},
				{Pattern: "soat", Type: TypeTime, NeedsNumber: true},
			},
			Action: []Rule{
				{Pattern: "tekshiraman", Type: TypeAction},
				{Pattern: "tekshirib", Type: TypeAction},
				{Pattern: "tuzataman", Type: TypeAction},
				{Pattern: "hal qilamiz", Type: TypeAction},
				{Pattern: "hal qilaman", Type: TypeAction},
				{Pattern: "ko'rib chiqaman", Type: TypeAction},
				{Pattern: "javob beraman", Type: TypeAction},
				{Pattern: "aniqlab beraman", Type: TypeAction},
				{Pattern: "qilib beraman", Type: TypeAction},
			},
			Vague: []Rule{
				{Pattern: "bir daqiqa", Type: TypeVague, Vague: true},
				{Pattern: "bir soniya", Type: TypeVague, Vague: true},
				{Pattern: "kutib turing", Type: TypeVague, Vague: true},
				{Pattern: "biroz kuting", Type: TypeVague, Vague: true},
				{Pattern: "hozir", Type: TypeVague, Vague: true},
				{Pattern: "shug'ullanyapmiz", Type: TypeVague, Vague: true},
				{Pattern: "jarayonda", Type: TypeVague, Vague: true},
			},
		},
		{
			Tag: LangUzbekCyrill,
			Time: []Rule{
				{Pattern: "эртага эрталаб", Type: TypeTime},
				{Pattern: "эртага", Type: TypeTime},
				{Pattern: "бугун", Type: TypeTime},
				{Pattern: "ярим соат", Type: TypeTime},
				{Pattern: "бир соат", Type: TypeTime},
				{Pattern: "кун охиригача", Type: TypeTime},
				{Pattern: "кечқурунгача", Type: TypeTime},
				{Pattern: "тушликкача", Type: TypeTime},
				{Pattern: "эрталаб", Type: TypeTime},
				{Pattern: "тез орада", Type: TypeTime},
				{Pattern: "яқин орада", Type: TypeTime},
				{Pattern: "дақиқа", Type: TypeTime, NeedsNumber: true},
				{Pattern: "соат", Type: TypeTime, NeedsNumber: true},
			},
			Action: []Rule{
				{Pattern: "текшираман", Type: TypeAction},
				{Pattern: "текшириб", Type: TypeAction},
				{Pattern: "тузатаман", Type: TypeAction},
				{Pattern: "ҳал қиламиз", Type: TypeAction},
				{Pattern: "ҳал қиламан", Type: TypeAction},
				{Pattern: "кўриб чиқаман", Type: TypeAction},
				{Pattern: "жавоб бераман", Type: TypeAction},
				{Pattern: "аниқлаб бераман", Type: TypeAction},
			},
			Vague: []Rule{
				{Pattern: "бир дақиқа", Type: TypeVague, Vague: true},
				{Pattern: "бир сония", Type: TypeVague, Vague: true},
				{Pattern: "кутиб туринг", Type: TypeVague, Vague: true},
				{Pattern: "бироз кутинг", Type: TypeVague, Vague: true},
				{Pattern: "ҳозир", Type: TypeVague, Vague: true},
				{Pattern: "жараёнда", Type: TypeVague, Vague: true},
			},
		},
		{
			Tag: LangEnglish,
			Time: []Rule{
				{Pattern: "tomorrow morning", Type: TypeTime},
				{Pattern: "tomorrow", Type: TypeTime},
				{Pattern: "end of day", Type: TypeTime},
				{Pattern: "end of the day", Type: TypeTime},
				{Pattern: "half an hour", Type: TypeTime},
				{Pattern: "an hour", Type: TypeTime},
				{Pattern: "by evening", Type: TypeTime},
				{Pattern: "by lunch", Type: TypeTime},
				{Pattern: "today", Type: TypeTime},
				{Pattern: "this morning", Type: TypeTime},
				{Pattern: "in the morning", Type: TypeTime},
				{Pattern: "in the near future", Type: TypeTime},
				{Pattern: "soon", Type: TypeTime},
				{Pattern: "minute", Type: TypeTime, NeedsNumber: true},
				{Pattern: "hour", Type: TypeTime, NeedsNumber: true},
			},
			Action: []Rule{
				{Pattern: "i will check", Type: TypeAction},
				{Pattern: "i'll check", Type: TypeAction},
				{Pattern: "we will fix", Type: TypeAction},
				{Pattern: "we'll fix", Type: TypeAction},
				{Pattern: "i will", Type: TypeAction},
				{Pattern: "i'll", Type: TypeAction},
				{Pattern: "we will", Type: TypeAction},
				{Pattern: "we'll", Type: TypeAction},
				{Pattern: "will get back", Type: TypeAction},
			},
			Vague: []Rule{
				{Pattern: "one moment", Type: TypeVague, Vague: true},
				{Pattern: "just a moment", Type: TypeVague, Vague: true},
				{Pattern: "a moment", Type: TypeVague, Vague: true},
				{Pattern: "hold on", Type: TypeVague, Vague: true},
				{Pattern: "bear with", Type: TypeVague, Vague: true},
				{Pattern: "working on it", Type: TypeVague, Vague: true},
				{Pattern: "we're on it", Type: TypeVague, Vague: true},
			},
		},
	}
}
