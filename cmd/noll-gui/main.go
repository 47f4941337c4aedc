package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/noll-to/noll/internal/cleanup"
	"github.com/noll-to/noll/internal/logger"
)

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	myApp := app.NewWithID(appID)

	w := myApp.NewWindow("Noll")
	w.SetMaster()
	w.Resize(fyne.NewSize(720, 560))
	w.CenterOnScreen()

	na := newNollApp(w, myApp.Preferences())
	w.SetCloseIntercept(func() {
		na.cancelActive("window closed")
		w.SetCloseIntercept(nil)
		w.Close()
	})

	na.startRun()
	w.ShowAndRun()

	if err := cleanup.RunAll(); err != nil {
		logger.Error("Cleanup failed", "error", err)
	}
}
