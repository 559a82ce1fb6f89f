package fare

import "context"

// Calculator 计费入口，组合站点图、固定距离与票价规则
// 构建后只读，可被任意数量的goroutine同时调用
type Calculator struct {
	network   *Network
	resolver  *DistanceResolver
	evaluator *RuleEvaluator
	config    Config
}

func NewCalculator(records []RouteRecord, cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	network, err := BuildNetwork(records, cfg.Network)
	if err != nil {
		return nil, err
	}
	evaluator, err := NewRuleEvaluator(cfg.Tariff)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		network:   network,
		resolver:  NewDistanceResolver(network, cfg.Network.DistanceOverrides),
		evaluator: evaluator,
		config:    cfg,
	}, nil
}

func (c *Calculator) Network() *Network {
	return c.network
}

func (c *Calculator) Config() Config {
	return c.config
}

func (c *Calculator) FareDistance(origin, destination string) (FareDistance, error) {
	return c.resolver.FareDistance(origin, destination)
}

func (c *Calculator) FareDistanceContext(ctx context.Context, origin, destination string) (FareDistance, error) {
	return c.resolver.FareDistanceContext(ctx, origin, destination)
}

func (c *Calculator) CalculateFare(origin, destination string, opts Options) (FareBreakdown, error) {
	return c.CalculateFareContext(context.Background(), origin, destination, opts)
}

func (c *Calculator) CalculateFareContext(ctx context.Context, origin, destination string, opts Options) (FareBreakdown, error) {
	distance, err := c.resolver.FareDistanceContext(ctx, origin, destination)
	if err != nil {
		return FareBreakdown{}, err
	}
	return c.evaluator.Evaluate(origin, destination, distance, opts), nil
}
