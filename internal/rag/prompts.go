package rag

import (
	"fmt"
	"strings"
	"time"

	"hydroatlas/internal/models"
)

// WaterExpertSystemPrompt establishes the assistant persona and answer rules
// for the water resources domain.
const WaterExpertSystemPrompt = `Ты - ГидроАтлас, эксперт-консультант по водным ресурсам и гидротехническим сооружениям Казахстана.

Твои основные задачи:
1. Отвечать на вопросы о водохранилищах, реках, озёрах и других водных объектах Казахстана
2. Предоставлять информацию о техническом состоянии гидротехнических сооружений
3. Объяснять приоритеты обследования объектов
4. Давать общую информацию о географии и водных ресурсах Казахстана

Правила ответа:
- Если предоставлен контекст из базы данных, используй его для точного ответа
- Если контекста нет или он не релевантен вопросу, отвечай на основе своих общих знаний
- Всегда отвечай на русском языке
- Будь информативным, но лаконичным
- Если не уверен в ответе, честно скажи об этом
`

const questionWithContextTemplate = `Контекст из базы данных водных объектов Казахстана:

%s

Вопрос пользователя: %s

Ответь на вопрос, используя предоставленный контекст. Если контекст не содержит нужной информации, дополни ответ своими знаниями.`

const questionWithoutContextTemplate = `Вопрос пользователя: %s

В базе данных не найдено релевантной информации по этому вопросу.
Ответь на вопрос, используя свои общие знания о водных ресурсах и географии Казахстана.
Если вопрос выходит за рамки твоей экспертизы, скажи об этом.`

// BuildUserPrompt renders the user-turn prompt, embedding the retrieved
// context when present.
func BuildUserPrompt(question, context string) string {
	if strings.TrimSpace(context) == "" {
		return fmt.Sprintf(questionWithoutContextTemplate, question)
	}
	return fmt.Sprintf(questionWithContextTemplate, context, question)
}

// ConditionDescription maps a technical condition score (1-5) to its
// Russian description.
func ConditionDescription(condition int) string {
	switch condition {
	case 1:
		return "критическое (требует немедленного обследования)"
	case 2:
		return "плохое (требует обследования)"
	case 3:
		return "удовлетворительное"
	case 4:
		return "хорошее"
	case 5:
		return "отличное"
	default:
		return "неизвестно"
	}
}

// PriorityDescription maps a priority score to its level label.
func PriorityDescription(priorityScore int) string {
	switch {
	case priorityScore >= 12:
		return "высокий"
	case priorityScore >= 6:
		return "средний"
	default:
		return "низкий"
	}
}

// WaterObjectSummary renders the deterministic textual summary of a water
// object that gets embedded as its "main" chunk. Field order is stable so
// re-indexing an unchanged object produces identical content.
func WaterObjectSummary(obj models.WaterObject, now time.Time) string {
	hasFauna := "нет, отсутствует"
	if obj.HasFauna {
		hasFauna = "да, присутствует"
	}

	passportAge := obj.PassportAgeYears(now)
	priority := obj.PriorityScore(now)

	return fmt.Sprintf(`Название объекта: %s
Область/Регион: %s
Тип водного ресурса: %s
Тип воды: %s
Наличие фауны: %s
Техническое состояние: %d из 5 - %s
Дата паспорта: %s
Возраст паспорта: %d лет
Приоритет обследования: %s (score: %d)
Координаты: широта %g, долгота %g`,
		obj.Name,
		obj.Region,
		obj.ResourceType.DisplayName(),
		obj.WaterType.DisplayName(),
		hasFauna,
		obj.TechnicalCondition,
		ConditionDescription(obj.TechnicalCondition),
		obj.PassportDate.Format("02.01.2006"),
		passportAge,
		PriorityDescription(priority),
		priority,
		obj.Latitude,
		obj.Longitude,
	)
}
