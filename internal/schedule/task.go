package schedule

import "context"

// Task 长期运行的后台任务, 由 main 统一托管
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
