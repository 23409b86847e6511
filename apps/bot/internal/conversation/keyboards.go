package conversation

import "vkinder/apps/bot/internal/vkapi"

// ====== keyboards ======

func mainKeyboard() *vkapi.Keyboard {
	return vkapi.NewKeyboard(false).
		AddButton(LabelFind, vkapi.ColorPrimary).
		AddLine().
		AddButton(LabelFavorites, vkapi.ColorPositive).
		AddButton(LabelSettings, vkapi.ColorSecondary).
		AddLine().
		AddButton(LabelBlacklist, vkapi.ColorNegative).
		AddButton(LabelHelp, vkapi.ColorSecondary)
}

// candidateKeyboard offers unlike instead of like once the photos are liked.
func candidateKeyboard(liked bool) *vkapi.Keyboard {
	kb := inline()
	if liked {
		kb.AddButton(LabelUnlike, vkapi.ColorSecondary)
	} else {
		kb.AddButton(LabelLike, vkapi.ColorPositive)
	}
	return kb.
		AddButton(LabelAddFavorite, vkapi.ColorPositive).
		AddButton(LabelAddBlacklist, vkapi.ColorNegative).
		AddLine().
		AddButton(LabelNextCandidate, vkapi.ColorPrimary).
		AddButton(LabelToMenu, vkapi.ColorSecondary)
}

func favoritesKeyboard() *vkapi.Keyboard {
	return inline().
		AddButton(LabelViewFavorites, vkapi.ColorPrimary).
		AddButton(LabelDeleteFavorites, vkapi.ColorNegative).
		AddLine().
		AddButton(LabelBack, vkapi.ColorSecondary)
}

func settingsKeyboard() *vkapi.Keyboard {
	return vkapi.NewKeyboard(false).
		AddButton(LabelMinAge, vkapi.ColorSecondary).
		AddButton(LabelMaxAge, vkapi.ColorSecondary).
		AddLine().
		AddButton(LabelCity, vkapi.ColorSecondary).
		AddButton(LabelGender, vkapi.ColorSecondary).
		AddLine().
		AddButton(LabelPriorities, vkapi.ColorPrimary).
		AddLine().
		AddButton(LabelDone, vkapi.ColorPositive).
		AddButton(LabelBack, vkapi.ColorSecondary)
}

func priorityKeyboard() *vkapi.Keyboard {
	return vkapi.NewKeyboard(false).
		AddButton(LabelAgeFirst, vkapi.ColorSecondary).
		AddButton(LabelMusicFirst, vkapi.ColorSecondary).
		AddLine().
		AddButton(LabelBooksFirst, vkapi.ColorSecondary).
		AddButton(LabelFriendsFirst, vkapi.ColorSecondary).
		AddLine().
		AddButton(LabelBack, vkapi.ColorSecondary)
}

func genderKeyboard() *vkapi.Keyboard {
	return vkapi.NewKeyboard(true).
		AddButton(LabelGenderMale, vkapi.ColorPrimary).
		AddButton(LabelGenderFemale, vkapi.ColorPrimary).
		AddLine().
		AddButton(LabelGenderAny, vkapi.ColorSecondary)
}

// emptyKeyboard hides the previous keyboard while free text is expected.
func emptyKeyboard() *vkapi.Keyboard {
	return vkapi.NewKeyboard(true)
}

func inline() *vkapi.Keyboard {
	kb := vkapi.NewKeyboard(false)
	kb.Inline = true
	return kb
}
