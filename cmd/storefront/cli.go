package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/storefront/internal/account"
	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/forms"
	"github.com/tyemirov/storefront/internal/session"
	"github.com/tyemirov/storefront/pkg/tokenclaims"
	"go.uber.org/zap"
)

const defaultCLIProfile = "default"

var errNotSignedIn = errors.New("cli.not_signed_in")

// cliSession is the terminal's Session Store together with an api client
// that reads from it.
type cliSession struct {
	store  *session.Store
	api    *apiclient.Client
	logger *zap.Logger
	close  func()
}

func newCLICommands() []*cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE:  runLogin,
	}
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (or APP_PASSWORD)")

	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		RunE:  runProducts,
	}
	productsCmd.Flags().Int("page", 1, "Page number")
	productsCmd.Flags().Int("limit", 12, "Products per page")
	productsCmd.Flags().String("category", "", "Filter by category")
	productsCmd.Flags().String("company", "", "Filter by company")
	productsCmd.Flags().String("search", "", "Search text")

	commands := []*cobra.Command{
		loginCmd,
		{Use: "logout", Short: "Forget the stored session", RunE: runLogout},
		{Use: "whoami", Short: "Show the stored session", RunE: runWhoAmI},
		productsCmd,
		{Use: "orders", Short: "List your orders", RunE: runOrders},
		{Use: "submissions", Short: "List contact submissions (admin)", RunE: runSubmissions},
	}
	for _, command := range commands {
		command.Flags().String("cli_session_url", "", "Session database URL (default sqlite in the user config dir)")
		command.Flags().String("cli_profile", defaultCLIProfile, "Session namespace within the session database")
		command.Flags().Bool("verbose", false, "Log backend calls to stderr")
		command.PreRunE = bindCLIFlags
	}
	return commands
}

func bindCLIFlags(command *cobra.Command, arguments []string) error {
	for _, key := range []string{"cli_session_url", "cli_profile", "verbose"} {
		if err := viper.BindPFlag(key, command.Flags().Lookup(key)); err != nil {
			return err
		}
	}
	return nil
}

func defaultCLISessionURL() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	directory := filepath.Join(configDir, "storefront")
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return "", err
	}
	return "sqlite://" + filepath.ToSlash(filepath.Join(directory, "session.db")), nil
}

func openCLISession(ctx context.Context) (*cliSession, error) {
	logger := zap.NewNop()
	if viper.GetBool("verbose") {
		developmentLogger, err := zap.NewDevelopment()
		if err == nil {
			logger = developmentLogger
		}
	}

	sessionURL := strings.TrimSpace(viper.GetString("cli_session_url"))
	if sessionURL == "" {
		defaultURL, err := defaultCLISessionURL()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configCodeCLISessionInit, err)
		}
		sessionURL = defaultURL
	}
	backend, err := session.NewDatabaseBackend(ctx, sessionURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configCodeCLISessionInit, err)
	}
	profile := strings.TrimSpace(viper.GetString("cli_profile"))
	if profile == "" {
		profile = defaultCLIProfile
	}

	options := []session.Option{session.WithLogger(logger)}
	if viper.GetBool("session_expiry_check") {
		options = append(options, session.WithExpiryCheck(tokenclaims.New(tokenclaims.Config{})))
	}
	store := session.NewStore(backend.Scope(profile), options...)

	apiBaseURL, err := loadAPIBaseURL()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	api := apiclient.New(apiclient.Config{
		BaseURL: apiBaseURL,
		Timeout: viper.GetDuration("api_timeout"),
	}, store, apiclient.WithLogger(logger))

	return &cliSession{
		store:  store,
		api:    api,
		logger: logger,
		close: func() {
			_ = backend.Close()
			_ = logger.Sync()
		},
	}, nil
}

func withCLISession(command *cobra.Command, run func(ctx context.Context, current *cliSession, output io.Writer) error) error {
	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	current, err := openCLISession(ctx)
	if err != nil {
		return err
	}
	defer current.close()
	return run(ctx, current, command.OutOrStdout())
}

func runLogin(command *cobra.Command, arguments []string) error {
	email, _ := command.Flags().GetString("email")
	password, _ := command.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("APP_PASSWORD")
	}
	form := forms.SignInForm{Email: strings.TrimSpace(email), Password: password}
	formValidator := validator.New()
	formValidator.SetTagName("binding")
	if err := formValidator.Struct(form); err != nil {
		return fmt.Errorf("login: --email and --password are required and the email must be valid: %w", err)
	}
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		record, err := account.NewService(current.api.Auth(), current.store, current.logger).SignIn(ctx, form)
		if err != nil {
			return fmt.Errorf("login: %s", apiclient.ErrorMessage(err, err.Error()))
		}
		_, writeErr := fmt.Fprintf(output, "Signed in as %s (%s)\n", current.store.DisplayName(ctx), record.Role)
		return writeErr
	})
}

func runLogout(command *cobra.Command, arguments []string) error {
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		if err := account.NewService(current.api.Auth(), current.store, current.logger).SignOut(ctx); err != nil {
			return err
		}
		_, writeErr := fmt.Fprintln(output, "Signed out")
		return writeErr
	})
}

func runWhoAmI(command *cobra.Command, arguments []string) error {
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		record, err := current.store.Read(ctx)
		if err != nil {
			return err
		}
		if record == nil {
			_, writeErr := fmt.Fprintln(output, "Not signed in")
			return writeErr
		}
		writer := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
		fmt.Fprintf(writer, "name\t%s\n", current.store.DisplayName(ctx))
		fmt.Fprintf(writer, "email\t%s\n", record.Email)
		fmt.Fprintf(writer, "role\t%s\n", record.Role)
		if record.UserID != "" {
			fmt.Fprintf(writer, "id\t%s\n", record.UserID)
		}
		return writer.Flush()
	})
}

func runProducts(command *cobra.Command, arguments []string) error {
	query := apiclient.ProductQuery{}
	query.Page, _ = command.Flags().GetInt("page")
	query.Limit, _ = command.Flags().GetInt("limit")
	query.Category, _ = command.Flags().GetString("category")
	query.Company, _ = command.Flags().GetString("company")
	query.Search, _ = command.Flags().GetString("search")
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		page, err := current.api.Products().List(ctx, query)
		if err != nil {
			return fmt.Errorf("products: %s", apiclient.ErrorMessage(err, err.Error()))
		}
		writer := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tNAME\tCOMPANY\tPRICE\tSTOCK")
		for _, product := range page.Products {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%.2f\t%d\n", product.ID, product.Name, product.Company, product.Price, product.Stock)
		}
		fmt.Fprintf(writer, "page %d of %d (%d products)\n", page.CurrentPage, page.TotalPages, page.Total)
		return writer.Flush()
	})
}

func runOrders(command *cobra.Command, arguments []string) error {
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		if !current.store.IsAuthenticated(ctx) {
			return errNotSignedIn
		}
		orders, err := current.api.Orders().List(ctx)
		if err != nil {
			return fmt.Errorf("orders: %s", apiclient.ErrorMessage(err, err.Error()))
		}
		writer := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tSTATUS\tTOTAL\tITEMS")
		for _, order := range orders {
			fmt.Fprintf(writer, "%s\t%s\t%.2f\t%d\n", order.ID, order.Status, order.TotalAmount, len(order.Items))
		}
		return writer.Flush()
	})
}

func runSubmissions(command *cobra.Command, arguments []string) error {
	return withCLISession(command, func(ctx context.Context, current *cliSession, output io.Writer) error {
		if !current.store.IsAuthenticated(ctx) {
			return errNotSignedIn
		}
		submissions, err := current.api.Contact().Submissions(ctx)
		if err != nil {
			return fmt.Errorf("submissions: %s", apiclient.ErrorMessage(err, err.Error()))
		}
		writer := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tFROM\tSUBJECT")
		for _, submission := range submissions {
			fmt.Fprintf(writer, "%s\t%s <%s>\t%s\n", submission.ID, submission.Name, submission.Email, submission.Subject)
		}
		return writer.Flush()
	})
}
