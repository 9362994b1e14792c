package config

// Bot Telegram-боты операторов. Пустой токен отключает оба бота.
type Bot struct {
	Token    string  `env:"BOT_TOKEN" json:"-"`
	ChatID   int64   `env:"BOT_CHAT_ID"`
	AdminIDs []int64 `env:"BOT_ADMIN_IDS" envSeparator:","`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}
