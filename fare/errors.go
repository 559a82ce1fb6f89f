package fare

import "errors"

var (
	// 错误：站点不存在
	ErrUnknownStation = errors.New("unknown station")
	// 错误：两站之间不连通，通常意味着线路数据有缺陷
	ErrNoPathFound = errors.New("no path found")
	// 错误：线路距离记录格式错误，建图终止
	ErrMalformedRecord = errors.New("malformed record")
)
