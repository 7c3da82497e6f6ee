package cli

import "variant-packager/internal/app"

var newAppService = app.NewService
