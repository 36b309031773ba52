package indicator

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("indicator",
		fx.Provide(
			NewProvider,
		),
	)
}
