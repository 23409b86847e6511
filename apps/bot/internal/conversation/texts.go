package conversation

// Reply texts.
const (
	textMainMenu       = "Главное меню:"
	textUseMenuButtons = "ℹ️ Используйте кнопки меню"
	textNeedAuth       = "🔒 Для работы бота необходимо авторизоваться. Напишите 'авторизоваться'"
	textReauthRequired = "❌ Требуется повторная авторизация. Напишите 'авторизоваться'"
	textGenericError   = "⚠️ Что-то пошло не так. Попробуйте еще раз позже."

	textAuthLink = "Для работы бота необходимо предоставить доступ к вашему профилю VK.\n" +
		"Пожалуйста, перейдите по ссылке для авторизации:\n%s\n\n" +
		"Далее нажмите на 'Разрешить', после перехода на другую страницу, скопируйте адрес и отправьте боту."
	textAuthPrepareFailed = "Ошибка при подготовке авторизации"
	textProfileFailed     = "Ошибка при создании профиля"
	textAuthBadParams     = "Неверные параметры авторизации"
	textAuthExpired       = "Сессия устарела, начните заново"
	textAuthTokenFailed   = "Ошибка получения токена"
	textAuthSuccess       = "✅ Авторизация успешна! Используйте меню:"

	textFloodWait      = "⏳ Слишком много запросов. Подождите 10 секунд..."
	textNoCandidates   = "😔 Не удалось найти подходящих кандидатов. Попробуйте изменить параметры поиска."
	textSearchFailed   = "⚠️ Ошибка при поиске. Попробуйте изменить параметры."
	textCandidateCard  = "👤 %s %s\n🔗 Профиль: %s\n💯 Совпадение: %d%%"
	textCandidateHint  = "ℹ️ Используйте кнопки для взаимодействия с кандидатом"
	textLiked          = "❤️ Лайки поставлены на лучшие фотографии!"
	textAlreadyLiked   = "❤️ Вы уже лайкнули эти фотографии"
	textUnliked        = "💔 Лайки убраны с фотографий"
	textNothingLiked   = "💔 Лайков на фотографиях нет"
	textNoPhotos       = "📷 У этого кандидата нет фотографий"
	textFavoriteAdded  = "⭐ Пользователь добавлен в избранное!"
	textFavoriteExists = "⭐ Пользователь уже в избранном"
	textFavoriteFail   = "⚠️ Не удалось добавить в избранное"
	textBlocked        = "🚫 Пользователь добавлен в черный список"
	textBlockFailed    = "⚠️ Не удалось добавить в черный список"

	textFavoritesEmpty   = "⭐ Ваш список избранных пуст"
	textFavoritesHeader  = "⭐ Ваши избранные:\n\n"
	textFavoritesDetails = "👀 Избранные анкеты:\n\n"
	textFavoritesFailed  = "⚠️ Произошла ошибка при загрузке избранных"
	textAskFavoriteIndex = "🗑 Отправьте номер анкеты, которую нужно удалить"
	textBadFavoriteIndex = "❌ Неверный номер избранного"
	textFavoriteRemoved  = "❌ Пользователь id%d удален из избранных"
	textFavoriteNotGone  = "⚠️ Не удалось удалить пользователя id%d"
	textFavoritesHint    = "ℹ️ Используйте кнопки или номер для удаления"

	textSettings = "🔧 Текущие настройки поиска:\n\n" +
		"• Возраст: от %d до %d\n" +
		"• Пол: %s\n" +
		"• Город: %s\n" +
		"• Только с фото: %s"
	textSettingsFailed  = "⚠️ Произошла ошибка при загрузке настроек"
	textSettingsHint    = "ℹ️ Используйте кнопки для изменения настроек"
	textAskMinAge       = "Введите минимальный возраст для поиска (от 18):"
	textAskMaxAge       = "Введите максимальный возраст для поиска (до 99):"
	textAskCity         = "Введите город для поиска:"
	textAskGender       = "👫 Кого будем искать?"
	textAgeOutOfRange   = "❌ Возраст должен быть числом от 18 до 99. Попробуйте еще раз:"
	textAgeMinAboveMax  = "❌ Минимальный возраст не может быть больше максимального (%d). Попробуйте еще раз:"
	textAgeMaxBelowMin  = "❌ Максимальный возраст не может быть меньше минимального (%d). Попробуйте еще раз:"
	textCityEmpty       = "❌ Название города не может быть пустым. Попробуйте еще раз:"
	textSaveFailed      = "❌ Ошибка при сохранении. Попробуйте еще раз:"
	textGenderSet       = "✅ Пол для поиска установлен: %s"
	textAskPriority     = "📊 Выберите, что для вас важнее:"
	textPrioritySet     = "✅ Приоритет установлен: %s"
	textPriorityInvalid = "❌ Неверный выбор приоритета"

	textBlacklistEmpty  = "Ваш черный список пуст"
	textBlacklistHeader = "🚫 Ваш черный список:\n"
	textBlacklistFailed = "⚠️ Ошибка при загрузке черного списка"

	textHelp = "ℹ️ Помощь по боту:\n\n" +
		"🔍 Найти пару - начать поиск\n" +
		"⭐ Избранное - ваши сохраненные анкеты\n" +
		"⚙️ Настройки - параметры поиска\n" +
		"❌ Чёрный список - заблокированные пользователи\n\n" +
		"В настройках вы можете указать:\n" +
		"- Возрастной диапазон\n" +
		"- Город\n" +
		"- Пол\n" +
		"- Приоритеты поиска"
)

// genderTitles renders SearchParams.Gender in the settings summary.
var genderTitles = map[string]string{
	"male":   "мужской",
	"female": "женский",
	"any":    "любой",
}
