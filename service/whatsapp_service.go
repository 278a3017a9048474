package service

import (
	"fmt"
	"net/url"
	"strings"

	"studio-storefront/models"
	"studio-storefront/pricing"
	"studio-storefront/utils"
)

// WhatsAppService renders a lead into WhatsApp message text and a wa.me link.
// Every amount comes from the lead's stored breakdown; nothing is recomputed here.
type WhatsAppService struct {
	studioName string
	number     string
}

// NewWhatsAppService creates a new WhatsAppService. number is the studio's WhatsApp
// number in any format; it is normalized to digits.
func NewWhatsAppService(studioName, number string) *WhatsAppService {
	return &WhatsAppService{
		studioName: studioName,
		number:     utils.NormalizePhone(number),
	}
}

// BuildMessage returns the message a customer sends to the studio about a quote
func (s *WhatsAppService) BuildMessage(lead *models.Lead, quoteURL string) string {
	b := lead.Pricing
	var sb strings.Builder

	if s.studioName != "" {
		fmt.Fprintf(&sb, "Ciao %s! ", s.studioName)
	} else {
		sb.WriteString("Ciao! ")
	}
	fmt.Fprintf(&sb, "Sono %s e vorrei informazioni su questo preventivo:\n\n", lead.Customer.Name)

	for _, line := range b.Lines() {
		switch {
		case line.IsGift:
			fmt.Fprintf(&sb, "🎁 %s: OMAGGIO (valore %s)\n", line.Title, utils.FormatEUR(line.OriginalPrice))
		case line.OriginalPrice > line.Price:
			fmt.Fprintf(&sb, "• %s: %s (invece di %s)\n", line.Title, utils.FormatEUR(line.Price), utils.FormatEUR(line.OriginalPrice))
		default:
			fmt.Fprintf(&sb, "• %s: %s\n", line.Title, utils.FormatEUR(line.Price))
		}
	}

	fmt.Fprintf(&sb, "\nSubtotale: %s\n", utils.FormatEUR(b.Subtotal()))
	if b.GlobalDiscountSavings() > 0 {
		label := "Sconto"
		if gd, ok := b.GlobalDiscount(); ok && gd.Type == pricing.DiscountPercent {
			label = "Sconto " + gd.Label
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, utils.FormatSavings(b.GlobalDiscountSavings()))
	}
	fmt.Fprintf(&sb, "Totale: %s\n", utils.FormatEUR(b.FinalTotal()))
	if b.TotalSavings() > 0 {
		fmt.Fprintf(&sb, "Risparmio totale: %s\n", utils.FormatEUR(b.TotalSavings()))
	}
	if b.IndividualDiscountSavings() > 0 {
		fmt.Fprintf(&sb, "di cui sconti sui prezzi: %s\n", utils.FormatEUR(b.IndividualDiscountSavings()))
	}
	if b.GiftSavings() > 0 {
		fmt.Fprintf(&sb, "di cui omaggi: %s\n", utils.FormatEUR(b.GiftSavings()))
	}

	if lead.Customer.EventDate != "" {
		fmt.Fprintf(&sb, "\nData evento: %s\n", lead.Customer.EventDate)
	}
	if quoteURL != "" {
		fmt.Fprintf(&sb, "\nPreventivo: %s", quoteURL)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Link returns a wa.me link that opens a chat with the studio prefilled with message.
// Without a studio number the link lets the customer pick the recipient.
func (s *WhatsAppService) Link(message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	if s.number == "" {
		return "https://wa.me/?text=" + text
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", s.number, text)
}
