package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"greencycle/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var contactNumberPattern = regexp.MustCompile(`^\d{10}$`)

type registerInput struct {
	Name          string   `form:"name" json:"name"`
	Email         string   `form:"email" json:"email"`
	Password      string   `form:"password" json:"password"`
	Role          string   `form:"role" json:"role"`
	ContactNumber string   `form:"contact_number" json:"contact_number"`
	Latitude      *float64 `form:"latitude" json:"latitude"`
	Longitude     *float64 `form:"longitude" json:"longitude"`
}

type loginInput struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input registerInput
	if err := s.decodeRequest(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.ContactNumber = strings.TrimSpace(input.ContactNumber)
	role := types.UserRole(strings.TrimSpace(input.Role))

	if err := validateRegisterInput(input, role); err != nil {
		s.respondError(w, err)
		return
	}

	signUp, err := s.cognitoClient.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(input.Email), // use email as username
		Password: aws.String(input.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(input.Email)},
			{Name: aws.String("name"), Value: aws.String(input.Name)},
		},
	})
	if err != nil {
		s.logger.WithError(err).Warn("identity provider rejected signup")
		s.respondSignUpError(w, err)
		return
	}

	user := &types.User{
		ID:            aws.ToString(signUp.UserSub),
		Role:          role,
		Name:          input.Name,
		Email:         input.Email,
		ContactNumber: input.ContactNumber,
	}
	if role == types.UserRoleLender {
		user.Latitude = input.Latitude
		user.Longitude = input.Longitude
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create user profile after signup")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, user)
}

func validateRegisterInput(input registerInput, role types.UserRole) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", types.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fmt.Errorf("%w: enter a valid email address", types.ErrValidation)
	}
	if input.Password == "" {
		return fmt.Errorf("%w: password is required", types.ErrValidation)
	}
	if !contactNumberPattern.MatchString(input.ContactNumber) {
		return fmt.Errorf("%w: enter a 10-digit phone number without spaces or symbols", types.ErrValidation)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: role must be lender or collector", types.ErrValidation)
	}
	if role == types.UserRoleLender && (input.Latitude == nil || input.Longitude == nil) {
		return fmt.Errorf("%w: lenders must share a pickup location", types.ErrValidation)
	}
	return nil
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input loginInput
	if err := s.decodeRequest(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	resp, err := s.cognitoClient.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": strings.TrimSpace(input.Email),
			"PASSWORD": input.Password,
		},
	})
	if err != nil {
		s.logger.WithError(err).Info("identity provider rejected login")
		s.respondSignInError(w, err)
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.respondErrorCode(w, http.StatusUnauthorized, "wrong_password", "Login failed.", "Check your credentials and try again.")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	userID, err := s.verifyAccessToken(ctx, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to verify freshly issued access token")
		s.internalServerError(w)
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondErrorCode(w, http.StatusUnauthorized, "user_not_found", "No profile exists for this account.", "Register before signing in.")
			return
		}
		s.logger.WithError(err).Error("failed to load user during login")
		s.internalServerError(w)
		return
	}

	session := &types.Session{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.ContactNumber,
	}

	if err := s.setAuthCookies(w, accessToken, expiresIn, session); err != nil {
		s.logger.WithError(err).Error("failed to write auth cookies")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, session)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, s.config.TokenCookieName)
	s.clearCookie(w, s.config.SessionCookieName)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// setAuthCookies writes the encrypted access-token cookie and the
// session-record cookie. The session record only gates which screens
// the client renders; authorization always re-verifies the token.
func (s *Service) setAuthCookies(w http.ResponseWriter, accessToken string, expiresIn int, session *types.Session) error {
	encryptedToken, err := s.cookie.Encode(s.config.TokenCookieName, accessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.TokenCookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	encodedSession, err := s.cookie.Encode(s.config.SessionCookieName, session)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    encodedSession,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// respondSignUpError maps identity provider signup failures to the
// error taxonomy.
func (s *Service) respondSignUpError(w http.ResponseWriter, err error) {
	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		s.respondErrorCode(w, http.StatusBadRequest, "weak_password", "Password does not meet the requirements.", "Use at least 8 characters with upper case, lower case, and a number.")
		return
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		s.respondErrorCode(w, http.StatusConflict, "email_in_use", "An account with this email already exists.", "Try logging in instead.")
		return
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		s.respondErrorCode(w, http.StatusBadRequest, "invalid_email", "Some details are invalid.", "Review the email address and try again.")
		return
	}

	s.internalServerError(w)
}

// respondSignInError maps identity provider login failures to the
// error taxonomy.
func (s *Service) respondSignInError(w http.ResponseWriter, err error) {
	var notAuthorized *ctypes.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		s.respondErrorCode(w, http.StatusUnauthorized, "wrong_password", "Incorrect email or password.", "Check your credentials and try again.")
		return
	}

	var userNotFound *ctypes.UserNotFoundException
	if errors.As(err, &userNotFound) {
		s.respondErrorCode(w, http.StatusUnauthorized, "user_not_found", "No account exists for this email.", "Register first, or check the address.")
		return
	}

	var notConfirmed *ctypes.UserNotConfirmedException
	if errors.As(err, &notConfirmed) {
		s.respondErrorCode(w, http.StatusForbidden, "user_disabled", "This account is not active yet.", "Confirm your account before signing in.")
		return
	}

	s.internalServerError(w)
}
