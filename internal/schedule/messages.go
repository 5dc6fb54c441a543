package schedule

import (
	"fmt"
	"strings"

	"WorkshopNotifier/internal/domain"
)

func subjectFor(kind domain.ScheduleKind, title string) string {
	switch kind {
	case domain.KindReminder:
		return "🔔 活動提醒 - " + title
	case domain.KindStart:
		return "🚀 活動即將開始 - " + title
	case domain.KindMaterial:
		return "📚 行前教材 - " + title
	case domain.KindFeedback:
		return "💬 活動回饋 - " + title
	}
	return "📣 活動通知 - " + title
}

func timeRange(ev *domain.Event) string {
	if ev.EndTime != "" {
		return ev.Time + " - " + ev.EndTime
	}
	return ev.Time
}

func buildPrompt(kind domain.ScheduleKind, ev *domain.Event) string {
	return fmt.Sprintf(`你是活動通知文案專家。請為以下工作坊撰寫「%s」通知訊息，語氣親切專業，約100-200字。

活動：%s
說明：%s
日期：%s
時間：%s
地點：%s

直接輸出通知內容。`,
		kind.Label(), ev.Title, ev.Description, ev.Date, timeRange(ev), ev.Location)
}

// fallbackBody is the fixed-format body used when every completion provider
// failed; delivery never waits on content generation succeeding.
func fallbackBody(kind domain.ScheduleKind, ev *domain.Event) string {
	switch kind {
	case domain.KindStart:
		return fmt.Sprintf("「%s」即將開始！\n時間：%s %s\n地點：%s\n\n請準時出席，期待與您相見！",
			ev.Title, ev.Date, timeRange(ev), ev.Location)
	case domain.KindMaterial:
		return fmt.Sprintf("「%s」的行前資料已準備完成。\n活動時間：%s %s\n地點：%s\n\n請於活動前完成相關準備，謝謝！",
			ev.Title, ev.Date, timeRange(ev), ev.Location)
	case domain.KindFeedback:
		return fmt.Sprintf("感謝您參加「%s」（%s）！\n\n邀請您花幾分鐘分享活動回饋，您的意見是我們持續進步的動力。",
			ev.Title, ev.Date)
	default:
		return fmt.Sprintf("提醒您，「%s」將於 %s %s 舉行。\n地點：%s\n\n期待您的參與！",
			ev.Title, ev.Date, timeRange(ev), ev.Location)
	}
}

func renderEmailHTML(title, body string) string {
	return fmt.Sprintf(`<div style="font-family: 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #6366f1, #a855f7); color: white; padding: 24px; border-radius: 16px 16px 0 0; text-align: center;">
    <h1 style="margin: 0; font-size: 20px;">%s</h1>
  </div>
  <div style="background: #f8fafc; padding: 24px; border-radius: 0 0 16px 16px;">
    <p>%s</p>
    <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 20px 0;">
    <p style="color: #94a3b8; font-size: 12px; text-align: center;">此信件由工作坊管理系統自動發送</p>
  </div>
</div>`, title, strings.ReplaceAll(body, "\n", "<br>"))
}

func chatText(ev *domain.Event, body string) string {
	return fmt.Sprintf("📣 <b>%s</b>\n\n%s", ev.Title, body)
}
