package notifier

import "perpbot/internal/logger"

// Console 把通知打进日志，作为未配置外部通道时的兜底。
type Console struct{}

func (Console) SendText(text string) error {
	logger.Infof("notify: %s", text)
	return nil
}

// Fanout 依次投递到多个通道；单个通道失败不影响其余，
// 返回最后一个错误供调用方记录。
type Fanout []TextNotifier

func (f Fanout) SendText(text string) error {
	var lastErr error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.SendText(text); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
