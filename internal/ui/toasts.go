package ui

import "github.com/bbrc/scout/internal/notify"

func (m Model) renderToast(kind notify.Kind, msg string, styles Styles, bg BgStyle) string {
	switch kind {
	case notify.KindLoading:
		return bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() + bg.Render(msg, styles.Text)
	case notify.KindSuccess:
		return bg.Render("✓ "+msg, styles.SuccessText)
	case notify.KindError:
		return bg.Render("✗ "+msg, styles.DangerText)
	default:
		return bg.Render("• "+msg, styles.InfoText)
	}
}
