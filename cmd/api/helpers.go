package main

type envelope map[string]interface{}

func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Error("background task panicked", "err", err)
			}
		}()

		fn()
	}()
}
