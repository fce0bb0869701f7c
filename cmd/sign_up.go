package cmd

import (
	"context"
	"fmt"
	"strings"

	shared "uniforum/shared"
	"uniforum/term"

	"github.com/spf13/cobra"
)

var signUpCmd = &cobra.Command{
	Use:   "sign-up",
	Short: "Create a forum account",
	Args:  cobra.NoArgs,
	Run:   signUp,
}

var verifyCmd = &cobra.Command{
	Use:   "verify [activation-link | uidb64 token]",
	Short: "Activate your account from the emailed link",
	Args:  cobra.RangeArgs(1, 2),
	Run:   verify,
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Email yourself a password reset link",
	Args:  cobra.MaximumNArgs(1),
	Run:   forgotPassword,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password [reset-link | uidb64 token]",
	Short: "Choose a new password from a reset link",
	Args:  cobra.RangeArgs(1, 2),
	Run:   resetPassword,
}

func init() {
	RootCmd.AddCommand(signUpCmd)
	RootCmd.AddCommand(verifyCmd)
	RootCmd.AddCommand(forgotPasswordCmd)
	RootCmd.AddCommand(resetPasswordCmd)

	signUpCmd.Flags().String("role", "student", "Student, Faculty, Staff or Alumni")
}

func signUp(cmd *cobra.Command, args []string) {
	role, _ := cmd.Flags().GetString("role")
	if shared.ParseRole(role) == "" {
		term.OutputErrorAndExit("Unknown role %q", role)
	}

	email, err := term.GetRequiredUserStringInput("University email:")
	if err != nil {
		term.OutputErrorAndExit("Error reading email: %v", err)
	}

	defaultUsername := strings.SplitN(email, "@", 2)[0]
	username, err := term.GetUserStringInputWithDefault("Username:", defaultUsername)
	if err != nil {
		term.OutputErrorAndExit("Error reading username: %v", err)
	}

	name, err := term.GetUserStringInput("Your name:")
	if err != nil {
		term.OutputErrorAndExit("Error reading name: %v", err)
	}

	req := shared.SignUpRequest{
		Username: username,
		Email:    email,
		Name:     name,
		Role:     role,
	}

	switch shared.ParseRole(role) {
	case shared.RoleStudent:
		req.Major, err = term.GetUserStringInput("Major:")
		if err == nil {
			req.Classification, err = term.GetUserStringInput("Classification (e.g. Junior):")
		}
	case shared.RoleFaculty, shared.RoleStaff:
		req.Department, err = term.GetUserStringInput("Department:")
	}
	if err != nil {
		term.OutputErrorAndExit("Error reading profile: %v", err)
	}

	req.Password, err = term.GetConfirmedPasswordInput("Password:", "Confirm password:")
	if err != nil {
		term.OutputErrorAndExit("Error reading password: %v", err)
	}
	req.Pass2 = req.Password

	term.StartSpinner("Creating account...")
	msg, apiErr := Forum.Auth.SignUp(context.Background(), req)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error creating account: %v", apiErr.Msg)
	}

	fmt.Println("✅ " + msg)
	fmt.Println()
	fmt.Println("Once you have the activation link, run:")
	fmt.Println()
	term.PrintCmds("", "verify")
}

// linkParts accepts either a full emailed link ending in /{uidb64}/{token}
// or the two parts as separate args.
func linkParts(args []string) (string, string) {
	if len(args) == 2 {
		return args[0], args[1]
	}

	parts := strings.Split(strings.Trim(args[0], "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func verify(cmd *cobra.Command, args []string) {
	uidb64, token := linkParts(args)

	term.StartSpinner("Activating...")
	msg, apiErr := Forum.Auth.VerifyEmail(context.Background(), uidb64, token)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error activating account: %v", apiErr.Msg)
	}

	fmt.Println("✅ " + msg)
	fmt.Println()
	term.PrintCmds("", "sign-in")
}

func forgotPassword(cmd *cobra.Command, args []string) {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else {
		email, err = term.GetRequiredUserStringInput("Account email:")
		if err != nil {
			term.OutputErrorAndExit("Error reading email: %v", err)
		}
	}

	term.StartSpinner("")
	msg, apiErr := Forum.Auth.RequestPasswordReset(context.Background(), email)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error requesting reset: %v", apiErr.Msg)
	}

	fmt.Println("📧 " + msg)
}

func resetPassword(cmd *cobra.Command, args []string) {
	uidb64, token := linkParts(args)

	password, err := term.GetConfirmedPasswordInput("New password:", "Confirm new password:")
	if err != nil {
		term.OutputErrorAndExit("Error reading password: %v", err)
	}

	term.StartSpinner("")
	msg, apiErr := Forum.Auth.ResetPassword(context.Background(), uidb64, token, password, password)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error resetting password: %v", apiErr.Msg)
	}

	fmt.Println("✅ " + msg)
	fmt.Println()
	term.PrintCmds("", "sign-in")
}
