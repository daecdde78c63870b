package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"

	"go-restaurant-pos/errs"
)

var validate *validator.Validate = validator.New()

// abortWithError translates a service error to its HTTP status and writes
// an {"error": message} body.
func abortWithError(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
}
