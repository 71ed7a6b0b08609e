package main

// General API documentation for swaggo. Run `swag init -g cmd/modeltune/main.go` to generate docs.
//
// @title           modeltune API
// @version         1.0
// @description     HTTP API for adaptive runtime-parameter tuning of locally served models.
//
// @contact.name   modeltune maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
