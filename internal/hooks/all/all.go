// Package all 汇总内置钩子
// 服务启动时把 Builtin() 的结果交给编排器；调用方可以在其上追加自己的钩子
package all

import (
	"yqhp/hookserver/internal/hook"
	"yqhp/hookserver/internal/hooks/cache"
	"yqhp/hookserver/internal/hooks/database"
	"yqhp/hookserver/internal/hooks/scheduler"
	"yqhp/hookserver/internal/hooks/storage"
)

// Builtin returns a fresh candidate map with every built-in hook factory.
func Builtin() hook.Candidates {
	return hook.Candidates{
		database.Name:  hook.Factory(database.Factory),
		cache.Name:     hook.Factory(cache.Factory),
		storage.Name:   hook.Factory(storage.Factory),
		scheduler.Name: hook.Factory(scheduler.Factory),
	}
}

// With returns Builtin plus extra. Entries in extra replace built-ins of the
// same name.
func With(extra hook.Candidates) hook.Candidates {
	c := Builtin()
	for name, src := range extra {
		c[name] = src
	}
	return c
}
