package mocks

//go:generate mockgen -destination=./mock_bar_source.go -package=mocks github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource BarSource
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_signal_listener.go -package=mocks github.com/rxtech-lab/argo-execution/internal/signal Listener
//go:generate mockgen -destination=./mock_commission_fee.go -package=mocks github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee CommissionFee
//go:generate mockgen -destination=./mock_slippage.go -package=mocks github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/slippage Slippage
