package web

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
)

const contentTypeJSON = "application/json"

// Respond converts a Go value to JSON and sends it to the client.
func Respond(ctx *fasthttp.RequestCtx, data interface{}, statusCode int) error {
	// If there is nothing to marshal then set status code and return.
	if statusCode == http.StatusNoContent {
		ctx.SetStatusCode(statusCode)
		return nil
	}

	// Convert the response value to JSON.
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return RespondRaw(ctx, jsonData, statusCode)
}

// RespondRaw sends an already encoded JSON body to the client.
func RespondRaw(ctx *fasthttp.RequestCtx, body []byte, statusCode int) error {

	// Set the content type and headers once we know marshaling has succeeded.
	ctx.SetContentType(contentTypeJSON)

	// Write the status code to the response.
	ctx.SetStatusCode(statusCode)

	// Send the result back to the client.
	if _, err := ctx.Write(body); err != nil {
		return err
	}

	return nil
}

// RespondError sends a plain text error response back to the client.
func RespondError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	ctx.Error(message, statusCode)
}
