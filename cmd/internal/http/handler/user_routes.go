package handler

import (
	"context"
	"net/http"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	SignUp(ctx context.Context, req *contract.SignUpRequest) (*contract.MessageResponse, apierror.ErrorResponse)
	VerifyCode(ctx context.Context, req *contract.VerifyCodeRequest) (*contract.MessageResponse, apierror.ErrorResponse)
	SignIn(ctx context.Context, req *contract.SignInRequest) (*contract.SignInResponse, apierror.ErrorResponse)
	CheckUsername(ctx context.Context, query *contract.UsernameQuery) (*contract.MessageResponse, apierror.ErrorResponse)
}

type DefaultUserRoute struct {
	UserService UserService
	Sessions    *utils.SessionTokens

	// SecureCookies marks the session cookie as HTTPS only.
	SecureCookies bool
}

func NewUserDefault(userService UserService, sessions *utils.SessionTokens, secureCookies bool) *DefaultUserRoute {
	return &DefaultUserRoute{
		UserService:   userService,
		Sessions:      sessions,
		SecureCookies: secureCookies,
	}
}

func (u *DefaultUserRoute) SignUp(c echo.Context) error {
	var req contract.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.SignUp(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (u *DefaultUserRoute) VerifyCode(c echo.Context) error {
	var req contract.VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.VerifyCode(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) SignIn(c echo.Context) error {
	var req contract.SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.SignIn(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.SetCookie(u.Sessions.NewSessionCookie(resp.Token, u.SecureCookies))
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) CheckUsername(c echo.Context) error {
	var query contract.UsernameQuery
	if err := c.Bind(&query); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("username"))
	}

	resp, apierr := u.UserService.CheckUsername(c.Request().Context(), &query)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
