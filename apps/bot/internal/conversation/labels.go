package conversation

import "vkinder/model"

// ====== button labels ======
// A pressed button sends its label as the message text, so labels double as commands.

const (
	// main menu
	LabelFind      = "🔍 Найти пару"
	LabelFavorites = "⭐ Избранное"
	LabelSettings  = "⚙️ Настройки"
	LabelBlacklist = "❌ Чёрный список"
	LabelHelp      = "ℹ️ Помощь"

	// candidate card
	LabelLike          = "❤️ Лайк"
	LabelUnlike        = "💔 Убрать лайк"
	LabelAddFavorite   = "⭐ В избранное"
	LabelAddBlacklist  = "✖️ В чёрный список"
	LabelNextCandidate = "➡️ Следующий"
	LabelToMenu        = "🏠 В меню"

	// favorites
	LabelViewFavorites   = "👀 Посмотреть"
	LabelDeleteFavorites = "🗑 Удалить"
	LabelBack            = "🔙 Назад"

	// search settings
	LabelMinAge     = "👶 Возраст от"
	LabelMaxAge     = "👴 Возраст до"
	LabelCity       = "🏙 Город"
	LabelGender     = "👫 Пол"
	LabelPriorities = "📊 Приоритеты"
	LabelDone       = "✅ Готово"

	// gender choice
	LabelGenderMale   = "👨 Мужской"
	LabelGenderFemale = "👩 Женский"
	LabelGenderAny    = "👥 Любой"

	// priority presets
	LabelAgeFirst     = "🔢 Возраст важнее"
	LabelMusicFirst   = "🎵 Музыка важнее"
	LabelBooksFirst   = "📚 Книги важнее"
	LabelFriendsFirst = "👥 Друзья важнее"
)

// CommandAuthorize starts the OAuth flow from any state.
const CommandAuthorize = "авторизоваться"

// globalCommands return to the main menu from any state (compared lowercased).
var globalCommands = map[string]struct{}{
	"меню":   {},
	"начать": {},
	"старт":  {},
}

// genderChoices maps gender buttons to the stored target.
var genderChoices = map[string]string{
	LabelGenderMale:   model.GenderMale,
	LabelGenderFemale: model.GenderFemale,
	LabelGenderAny:    model.GenderAny,
}

// priorityPresets maps preset buttons to the weights they set. Unlisted weights keep their value.
var priorityPresets = map[string]model.SearchParamsUpdate{
	LabelAgeFirst:     {AgeWeight: weightOf(1.0), InterestsWeight: weightOf(0.7)},
	LabelMusicFirst:   {InterestsWeight: weightOf(1.0), AgeWeight: weightOf(0.7)},
	LabelBooksFirst:   {InterestsWeight: weightOf(1.0), AgeWeight: weightOf(0.7)},
	LabelFriendsFirst: {FriendsWeight: weightOf(1.0), AgeWeight: weightOf(0.7)},
}

func weightOf(v float64) *float64 { return &v }
