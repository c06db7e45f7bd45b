package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/webhook"

	"crypto-arbitrage-dashboard/internal/domain"
)

// DiscordSender posts alerts as webhook embeds. The webhook client is
// created per send, so a bad URL surfaces as a delivery error instead of a
// startup failure.
type DiscordSender struct {
	webhookURL string
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{webhookURL: webhookURL}
}

func (s *DiscordSender) Name() string {
	return "discord"
}

func (s *DiscordSender) Send(ctx context.Context, rec domain.AlertRecord, _ string) error {
	client, err := webhook.NewWithURL(s.webhookURL)
	if err != nil {
		return fmt.Errorf("create discord webhook client: %w", err)
	}
	defer client.Close(ctx)

	_, err = client.CreateEmbeds([]discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle("Arbitrage opportunity: " + rec.Asset).
			SetColor(0x00ff00).
			AddField("Buy On", rec.BuyExchange+" ("+rec.BuySymbol+")", true).
			AddField("Sell On", rec.SellExchange+" ("+rec.SellSymbol+")", true).
			AddField("​", "​", false).
			AddField("Buy Price", fmt.Sprintf("%.6f", rec.BuyPrice), true).
			AddField("Sell Price", fmt.Sprintf("%.6f", rec.SellPrice), true).
			AddField("Transfer Fee", fmt.Sprintf("%.6f", rec.TransferFee), true).
			AddField("Buy Fee %", fmt.Sprintf("%.4f", rec.BuyFeePercent), true).
			AddField("Sell Fee %", fmt.Sprintf("%.4f", rec.SellFeePercent), true).
			AddField("​", "​", false).
			AddField("Profit/unit", fmt.Sprintf("%.6f", rec.ProfitAbsolute), true).
			AddField("Profit %", fmt.Sprintf("%.4f%%", rec.ProfitPercent), true).
			AddField("Timestamp", rec.Timestamp.UTC().Format(time.RFC3339), true).
			Build()})
	if err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}
	return nil
}
