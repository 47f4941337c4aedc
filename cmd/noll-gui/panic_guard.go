package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/noll-to/noll/internal/controller"
	"github.com/noll-to/noll/internal/logger"
)

func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}

func safeGo(scope string, fn func()) {
	go func() {
		withPanicGuard(scope, nil, fn)
	}()
}

func (a *nollApp) safeGo(scope string, fn func()) {
	if a == nil {
		safeGo(scope, fn)
		return
	}
	go func() {
		withPanicGuard(scope, func(r any) {
			a.handleRecoveredPanic(scope, r)
		}, fn)
	}()
}

func (a *nollApp) safeDo(scope string, fn func()) {
	withPanicGuard(scope+".dispatch", func(r any) {
		a.handleRecoveredPanic(scope+".dispatch", r)
	}, func() {
		fyne.Do(func() {
			withPanicGuard(scope, func(r any) {
				a.handleRecoveredPanic(scope, r)
			}, fn)
		})
	})
}

func (a *nollApp) handleRecoveredPanic(scope string, _ any) {
	if a == nil || fyne.CurrentApp() == nil {
		return
	}
	a.cancelActive("panic recovered: " + scope)
	a.panicNoticeOnce.Do(func() {
		fyne.Do(func() {
			a.show(controller.Error{Message: "An internal error stopped the translation. Please retry."})
			if a.window != nil {
				dialog.ShowInformation(
					"Unexpected Error",
					"An internal error occurred and the current task was stopped for safety. Please retry. If this repeats, restart the app.",
					a.window,
				)
			}
		})
	})
}
