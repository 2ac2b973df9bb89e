package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/keyboards"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	"github.com/vladimiradmaev/bp-assistant/internal/trends"
)

const historyPageSize = 10

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64) error {
	text := `🩺 *BP Assistant* — your blood pressure companion

📷 Send a photo of your monitor's display and I will:
• Read systolic, diastolic and pulse values
• Store the reading with the photo
• Show trends and a clinical category

⚠️ *Important:* this is reference information, always consult your doctor!

Choose an action:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// historyPage slices one page out of the full reading list. prev and next
// are the offsets of the neighbouring pages, -1 when there is none.
func historyPage(readings []database.Reading, offset int) (page []database.Reading, prev, next int) {
	if offset < 0 || offset >= len(readings) {
		offset = 0
	}
	end := offset + historyPageSize
	if end > len(readings) {
		end = len(readings)
	}

	prev = -1
	if offset > 0 {
		prev = offset - historyPageSize
		if prev < 0 {
			prev = 0
		}
	}
	next = -1
	if end < len(readings) {
		next = end
	}
	return readings[offset:end], prev, next
}

// SendHistory renders one page of readings with trend arrows against the
// previous (next older) reading, plus per-reading action buttons and
// newer/older navigation when more pages exist.
func SendHistory(api *tgbotapi.BotAPI, chatID int64, readings []database.Reading, offset int) error {
	if len(readings) == 0 {
		msg := tgbotapi.NewMessage(chatID, "No readings yet. Send a photo of your monitor to add the first one.")
		msg.ReplyMarkup = keyboards.BackToMenu()
		_, err := api.Send(msg)
		return err
	}

	if offset < 0 || offset >= len(readings) {
		offset = 0
	}
	page, prev, next := historyPage(readings, offset)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 *Your readings* (%d-%d of %d, newest first):\n\n",
		offset+1, offset+len(page), len(readings)))
	for i, r := range page {
		category := trends.Categorize(r.Systolic, r.Diastolic)
		arrow := ""
		if offset+i+1 < len(readings) {
			delta := trends.TrendDelta(r, readings[offset+i+1])
			arrow = " " + directionArrow(delta.Direction)
		}
		b.WriteString(fmt.Sprintf("%s *%d/%d* mmHg, pulse %d%s\n%s · %s %s\n",
			r.Timestamp.Format("02 Jan 15:04"),
			r.Systolic, r.Diastolic, r.Pulse, arrow,
			categoryEmoji(category.Severity), category.Label, notesSuffix(r.Notes)))
		b.WriteString(fmt.Sprintf("#%d\n\n", r.ID))
	}
	b.WriteString("Use the buttons below to edit or delete a reading.")

	keyboard := tgbotapi.InlineKeyboardMarkup{}
	for _, r := range page {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✏️ #%d", r.ID), fmt.Sprintf("edit_reading:%d", r.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📝 #%d", r.ID), fmt.Sprintf("edit_notes:%d", r.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑️ #%d", r.ID), fmt.Sprintf("delete_reading:%d", r.ID)),
			),
		)
	}
	if prev >= 0 || next >= 0 {
		var nav []tgbotapi.InlineKeyboardButton
		if prev >= 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬆️ Newer", fmt.Sprintf("history:%d", prev)))
		}
		if next >= 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬇️ Older", fmt.Sprintf("history:%d", next)))
		}
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, nav)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err := api.Send(msg)
	return err
}

// SendDashboard renders period averages and the category of the most
// recent reading.
func SendDashboard(api *tgbotapi.BotAPI, chatID int64, week, month []database.Reading, latest *database.Reading) error {
	weekAvg := trends.Average(week)
	monthAvg := trends.Average(month)

	var b strings.Builder
	b.WriteString("📈 *Dashboard*\n\n")

	if latest != nil {
		category := trends.Categorize(latest.Systolic, latest.Diastolic)
		b.WriteString(fmt.Sprintf("Latest: *%d/%d* mmHg, pulse %d\n%s %s\n\n",
			latest.Systolic, latest.Diastolic, latest.Pulse,
			categoryEmoji(category.Severity), category.Label))
	}

	b.WriteString(formatPeriod("Last 7 days", weekAvg, len(week)))
	b.WriteString(formatPeriod("Last 30 days", monthAvg, len(month)))

	if len(week) == 0 && len(month) == 0 {
		b.WriteString("\nNo readings in the last month. Send a photo to get started.")
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := api.Send(msg)
	return err
}

// SendProfile renders the stored profile, or an invitation to create one.
func SendProfile(api *tgbotapi.BotAPI, chatID int64, profile *database.UserProfile) error {
	var b strings.Builder
	if profile == nil {
		b.WriteString("👤 No profile yet. Set one up so reports carry your details.\n")
	} else {
		b.WriteString("👤 *Your profile*\n\n")
		if profile.DateOfBirth != nil {
			b.WriteString(fmt.Sprintf("🎂 Date of birth: %s\n", profile.DateOfBirth.Format("2006-01-02")))
		}
		if profile.WeightKg > 0 {
			b.WriteString(fmt.Sprintf("⚖️ Weight: %.1f kg\n", profile.WeightKg))
		}
		if profile.HeightCm > 0 {
			b.WriteString(fmt.Sprintf("📏 Height: %.0f cm\n", profile.HeightCm))
		}
		if profile.Gender != "" {
			b.WriteString(fmt.Sprintf("Gender: %s\n", strings.ReplaceAll(profile.Gender, "_", " ")))
		}
		if len(profile.Conditions) > 0 {
			b.WriteString(fmt.Sprintf("🏥 Conditions: %s\n", strings.Join(profile.Conditions, ", ")))
		}
		if len(profile.Medications) > 0 {
			b.WriteString(fmt.Sprintf("💊 Medications: %s\n", strings.Join(profile.Medications, ", ")))
		}
		if profile.EmergencyContactName != "" {
			b.WriteString(fmt.Sprintf("🆘 Emergency contact: %s, %s\n",
				profile.EmergencyContactName, profile.EmergencyContactPhone))
		}
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit profile", "edit_profile"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err := api.Send(msg)
	return err
}

// SendReminders renders the reminder list and management buttons.
func SendReminders(api *tgbotapi.BotAPI, chatID int64, reminders []database.Reminder) error {
	var text string
	if len(reminders) == 0 {
		text = "⏰ No reminders yet. Add a daily or weekly measurement reminder."
	} else {
		var b strings.Builder
		b.WriteString("⏰ Your reminders (tap to delete):\n\n")
		for _, r := range reminders {
			if r.Kind == "weekly" {
				b.WriteString(fmt.Sprintf("• weekly, %s at %02d:%02d\n",
					weekdayName(r.Weekday), r.Hour, r.Minute))
			} else {
				b.WriteString(fmt.Sprintf("• daily at %02d:%02d\n", r.Hour, r.Minute))
			}
		}
		text = b.String()
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.ReminderMenu(reminders)
	_, err := api.Send(msg)
	return err
}

func formatPeriod(label string, avg trends.Averages, count int) string {
	if count == 0 {
		return fmt.Sprintf("*%s:* no readings\n", label)
	}
	return fmt.Sprintf("*%s* (%d readings):\nAvg *%d/%d* mmHg, pulse %d\n\n",
		label, count, avg.Systolic, avg.Diastolic, avg.Pulse)
}

func directionArrow(d trends.Direction) string {
	switch d {
	case trends.DirectionUp:
		return "↗️"
	case trends.DirectionDown:
		return "↘️"
	default:
		return "➡️"
	}
}

func categoryEmoji(s trends.Severity) string {
	switch s {
	case trends.SeverityNormal:
		return "🟢"
	case trends.SeverityElevated:
		return "🟡"
	case trends.SeverityStage1:
		return "🟠"
	case trends.SeverityStage2:
		return "🔴"
	default:
		return "🆘"
	}
}

func notesSuffix(notes string) string {
	if notes == "" {
		return ""
	}
	return "· " + notes
}

func weekdayName(d int) string {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if d < 0 || d >= len(names) {
		return "?"
	}
	return names[d]
}
