package config

// Mail параметры очереди писем и SMTP. Без SMTP_HOST письма только логируются.
type Mail struct {
	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD" json:"-"`
	From             string `env:"SMTP_FROM" envDefault:"alerts@agromarket.local"`
	QueueConcurrency int    `env:"MAIL_QUEUE_CONCURRENCY" envDefault:"4"`
}
