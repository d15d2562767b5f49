// Package cli provides the command-line interface for fluentctl.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fluentcrm-tools/fluentctl/pkg/client"
	"github.com/fluentcrm-tools/fluentctl/pkg/config"
	"github.com/fluentcrm-tools/fluentctl/pkg/crm"
	"github.com/fluentcrm-tools/fluentctl/pkg/logging"
)

// Version information
const Version = "0.1.0"

// RootCmd is the root command for the CLI.
var RootCmd = &cobra.Command{
	Use:   "fluentctl",
	Short: "FluentCRM CLI - Manage contacts, tags and lists",
	Long: `Command-line client for the FluentCRM REST API.

Credentials come from the environment (or a .env file in the working
directory):
  FLUENT_URL       Base URL of the WordPress site running FluentCRM
  FLUENT_USER      WordPress username
  FLUENT_PASSWORD  Application password`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logging.DefaultConfig()
		if verbose {
			cfg.Level = logging.LevelDebug
		}
		logging.Setup(cfg)
	},
	SilenceUsage: true,
}

// Root command flags
var (
	verbose bool
)

// get-contact command flags
var (
	getEmail string
	getID    int64
)

// create-contact command flags
var (
	createEmail     string
	createFirstName string
	createLastName  string
	createTags      string
	createLists     string
)

// delete-contact command flags
var (
	deleteEmail string
	deleteID    int64
)

// update-contact-tags command flags
var (
	tagsEmail  string
	tagsID     int64
	tagsIDs    string
	tagsAppend bool
)

// update-contact-lists command flags
var (
	listsEmail  string
	listsID     int64
	listsIDs    string
	listsAppend bool
)

// Tag command flags
var (
	createTagTitle string
	createTagSlug  string
	deleteTagID    int64
)

// List command flags
var (
	createListTitle string
	createListSlug  string
	updateListID    int64
	updateListTitle string
	updateListSlug  string
	deleteListID    int64
)

// Command definitions
var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fluentctl version %s\n", Version)
		},
	}

	getContactCmd = &cobra.Command{
		Use:   "get-contact",
		Short: "Retrieve a contact by email or id",
		Long: `Retrieve a single contact and print it as indented JSON.

Exactly one of --email or --id must be given.`,
		Example: `  # Look up by email
  fluentctl get-contact --email jane@example.com

  # Look up by id
  fluentctl get-contact --id 42`,
		RunE: runGetContact,
	}

	createContactCmd = &cobra.Command{
		Use:   "create-contact",
		Short: "Create a new contact",
		Long: `Create a contact with status "subscribed".

Email, first name and last name are required. Tags and lists are
attached at creation when their ids are given as comma-separated lists.`,
		Example: `  # Minimal contact
  fluentctl create-contact --email new@example.com --first-name New --last-name Person

  # With tags and lists attached
  fluentctl create-contact --email new@example.com --first-name New --last-name Person --tags 1,2 --lists 3`,
		RunE: runCreateContact,
	}

	deleteContactCmd = &cobra.Command{
		Use:   "delete-contact",
		Short: "Delete a contact by email or id",
		Long: `Resolve the contact first, then delete it by its numeric id.

Exactly one of --email or --id must be given. Deletion is permanent.`,
		Example: `  fluentctl delete-contact --email old@example.com
  fluentctl delete-contact --id 42`,
		RunE: runDeleteContact,
	}

	updateContactTagsCmd = &cobra.Command{
		Use:   "update-contact-tags",
		Short: "Rewrite a contact's tag memberships",
		Long: `Update the tags attached to a contact in one call.

By default the given ids REPLACE the contact's current tags: every
current tag is detached and the new set attached together. With
--append the ids are attached on top of the existing ones instead.`,
		Example: `  # Replace all tags with 5 and 7
  fluentctl update-contact-tags --email jane@example.com --tags 5,7

  # Add tag 7 without touching existing tags
  fluentctl update-contact-tags --email jane@example.com --tags 7 --append`,
		RunE: runUpdateContactTags,
	}

	updateContactListsCmd = &cobra.Command{
		Use:   "update-contact-lists",
		Short: "Rewrite a contact's list memberships",
		Long: `Update the lists a contact belongs to in one call.

By default the given ids REPLACE the contact's current list
memberships. With --append the ids are attached on top instead.`,
		Example: `  fluentctl update-contact-lists --email jane@example.com --lists 2,3
  fluentctl update-contact-lists --id 42 --lists 3 --append`,
		RunE: runUpdateContactLists,
	}

	getTagsCmd = &cobra.Command{
		Use:   "get-tags",
		Short: "List all tags as CSV",
		Long: `Fetch every tag, following pagination, and print the collection as
CSV on stdout. An empty collection prints the header row only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollection("tags")
		},
	}

	createTagCmd = &cobra.Command{
		Use:     "create-tag",
		Short:   "Create a new tag",
		Example: `  fluentctl create-tag --title "VIP Customers" --slug vip-customers`,
		RunE:    runCreateTag,
	}

	deleteTagCmd = &cobra.Command{
		Use:   "delete-tag",
		Short: "Delete a tag by id",
		RunE:  runDeleteTag,
	}

	getListsCmd = &cobra.Command{
		Use:   "get-lists",
		Short: "List all lists as CSV",
		Long: `Fetch every list, following pagination, and print the collection as
CSV on stdout. An empty collection prints the header row only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollection("lists")
		},
	}

	createListCmd = &cobra.Command{
		Use:     "create-list",
		Short:   "Create a new list",
		Example: `  fluentctl create-list --title "Newsletter" --slug newsletter`,
		RunE:    runCreateList,
	}

	updateListCmd = &cobra.Command{
		Use:   "update-list",
		Short: "Change a list's title and/or slug",
		RunE:  runUpdateList,
	}

	deleteListCmd = &cobra.Command{
		Use:   "delete-list",
		Short: "Delete a list by id",
		RunE:  runDeleteList,
	}
)

// newClient builds the API client from the environment.
func newClient() (*client.Client, error) {
	cred, err := config.Load()
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		BaseURL:  cred.BaseURL,
		Username: cred.Username,
		Password: cred.Password,
	})
}

// newService builds the CRM service from the environment.
func newService() (*crm.Service, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	return crm.NewService(c), nil
}

// contactRef builds a ContactRef from the email/id flag pair. Cobra's
// flag groups guarantee exactly one is set.
func contactRef(email string, id int64) crm.ContactRef {
	if email != "" {
		return crm.ContactRef{Email: email}
	}
	return crm.ContactRef{ID: id}
}

// parseIDList parses a comma-separated id list like "1,2,3".
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: expected a comma-separated list of numbers", strings.TrimSpace(p))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printJSON writes raw JSON to stdout, indented.
func printJSON(raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Println(buf.String())
	return nil
}

// announce prints a success message to stderr, keeping stdout parseable.
func announce(format string, args ...any) {
	green := color.New(color.FgGreen).SprintfFunc()
	fmt.Fprintln(os.Stderr, green(format, args...))
}

func runGetContact(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	contact, err := svc.GetContact(context.Background(), contactRef(getEmail, getID))
	if err != nil {
		return err
	}

	return printJSON(contact.Raw)
}

func runCreateContact(cmd *cobra.Command, args []string) error {
	tagIDs, err := parseIDList(createTags)
	if err != nil {
		return fmt.Errorf("invalid --tags: %w", err)
	}
	listIDs, err := parseIDList(createLists)
	if err != nil {
		return fmt.Errorf("invalid --lists: %w", err)
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.CreateContact(context.Background(), crm.ContactInput{
		Email:     createEmail,
		FirstName: createFirstName,
		LastName:  createLastName,
		TagIDs:    tagIDs,
		ListIDs:   listIDs,
	})
	if err != nil {
		return err
	}

	announce("Contact %s created.", createEmail)
	return printJSON(raw)
}

func runDeleteContact(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	ref := contactRef(deleteEmail, deleteID)
	raw, err := svc.DeleteContact(context.Background(), ref)
	if err != nil {
		return err
	}

	announce("Contact %s deleted.", ref.String())
	return printJSON(raw)
}

func runUpdateContactTags(cmd *cobra.Command, args []string) error {
	ids, err := parseIDList(tagsIDs)
	if err != nil {
		return fmt.Errorf("invalid --tags: %w", err)
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	mode := crm.ModeReplace
	if tagsAppend {
		mode = crm.ModeAppend
	}

	raw, err := svc.UpdateAssociations(context.Background(), contactRef(tagsEmail, tagsID), crm.AssociationTags, ids, mode)
	if err != nil {
		return err
	}

	announce("Contact tags updated.")
	return printJSON(raw)
}

func runUpdateContactLists(cmd *cobra.Command, args []string) error {
	ids, err := parseIDList(listsIDs)
	if err != nil {
		return fmt.Errorf("invalid --lists: %w", err)
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	mode := crm.ModeReplace
	if listsAppend {
		mode = crm.ModeAppend
	}

	raw, err := svc.UpdateAssociations(context.Background(), contactRef(listsEmail, listsID), crm.AssociationLists, ids, mode)
	if err != nil {
		return err
	}

	announce("Contact lists updated.")
	return printJSON(raw)
}

func runCreateTag(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.CreateTag(context.Background(), createTagTitle, createTagSlug)
	if err != nil {
		return err
	}

	announce("Tag %q created.", createTagTitle)
	return printJSON(raw)
}

func runDeleteTag(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.DeleteTag(context.Background(), deleteTagID)
	if err != nil {
		return err
	}

	announce("Tag %d deleted.", deleteTagID)
	return printJSON(raw)
}

func runCreateList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.CreateList(context.Background(), createListTitle, createListSlug)
	if err != nil {
		return err
	}

	announce("List %q created.", createListTitle)
	return printJSON(raw)
}

func runUpdateList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.UpdateList(context.Background(), updateListID, updateListTitle, updateListSlug)
	if err != nil {
		return err
	}

	announce("List %d updated.", updateListID)
	return printJSON(raw)
}

func runDeleteList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	raw, err := svc.DeleteList(context.Background(), deleteListID)
	if err != nil {
		return err
	}

	announce("List %d deleted.", deleteListID)
	return printJSON(raw)
}

// Init initializes the CLI commands and flags.
func Init() {
	RootCmd.Version = Version
	RootCmd.SetVersionTemplate("fluentctl version {{.Version}}\n")

	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// get-contact
	getContactCmd.Flags().StringVar(&getEmail, "email", "", "Contact email address")
	getContactCmd.Flags().Int64Var(&getID, "id", 0, "Contact id")
	getContactCmd.MarkFlagsMutuallyExclusive("email", "id")
	getContactCmd.MarkFlagsOneRequired("email", "id")

	// create-contact
	createContactCmd.Flags().StringVar(&createEmail, "email", "", "Contact email address (required)")
	createContactCmd.Flags().StringVar(&createFirstName, "first-name", "", "First name")
	createContactCmd.Flags().StringVar(&createLastName, "last-name", "", "Last name")
	createContactCmd.Flags().StringVar(&createTags, "tags", "", "Comma-separated tag ids to attach")
	createContactCmd.Flags().StringVar(&createLists, "lists", "", "Comma-separated list ids to attach")
	createContactCmd.MarkFlagRequired("email")
	createContactCmd.MarkFlagRequired("first-name")
	createContactCmd.MarkFlagRequired("last-name")

	// delete-contact
	deleteContactCmd.Flags().StringVar(&deleteEmail, "email", "", "Contact email address")
	deleteContactCmd.Flags().Int64Var(&deleteID, "id", 0, "Contact id")
	deleteContactCmd.MarkFlagsMutuallyExclusive("email", "id")
	deleteContactCmd.MarkFlagsOneRequired("email", "id")

	// update-contact-tags
	updateContactTagsCmd.Flags().StringVar(&tagsEmail, "email", "", "Contact email address")
	updateContactTagsCmd.Flags().Int64Var(&tagsID, "id", 0, "Contact id")
	updateContactTagsCmd.Flags().StringVar(&tagsIDs, "tags", "", "Comma-separated tag ids (required)")
	updateContactTagsCmd.Flags().BoolVar(&tagsAppend, "append", false, "Attach on top of existing tags instead of replacing")
	updateContactTagsCmd.MarkFlagsMutuallyExclusive("email", "id")
	updateContactTagsCmd.MarkFlagsOneRequired("email", "id")
	updateContactTagsCmd.MarkFlagRequired("tags")

	// update-contact-lists
	updateContactListsCmd.Flags().StringVar(&listsEmail, "email", "", "Contact email address")
	updateContactListsCmd.Flags().Int64Var(&listsID, "id", 0, "Contact id")
	updateContactListsCmd.Flags().StringVar(&listsIDs, "lists", "", "Comma-separated list ids (required)")
	updateContactListsCmd.Flags().BoolVar(&listsAppend, "append", false, "Attach on top of existing lists instead of replacing")
	updateContactListsCmd.MarkFlagsMutuallyExclusive("email", "id")
	updateContactListsCmd.MarkFlagsOneRequired("email", "id")
	updateContactListsCmd.MarkFlagRequired("lists")

	// create-tag
	createTagCmd.Flags().StringVar(&createTagTitle, "title", "", "Tag title (required)")
	createTagCmd.Flags().StringVar(&createTagSlug, "slug", "", "Tag slug (required)")
	createTagCmd.MarkFlagRequired("title")
	createTagCmd.MarkFlagRequired("slug")

	// delete-tag
	deleteTagCmd.Flags().Int64Var(&deleteTagID, "id", 0, "Tag id (required)")
	deleteTagCmd.MarkFlagRequired("id")

	// create-list
	createListCmd.Flags().StringVar(&createListTitle, "title", "", "List title (required)")
	createListCmd.Flags().StringVar(&createListSlug, "slug", "", "List slug (required)")
	createListCmd.MarkFlagRequired("title")
	createListCmd.MarkFlagRequired("slug")

	// update-list
	updateListCmd.Flags().Int64Var(&updateListID, "id", 0, "List id (required)")
	updateListCmd.Flags().StringVar(&updateListTitle, "title", "", "New title")
	updateListCmd.Flags().StringVar(&updateListSlug, "slug", "", "New slug")
	updateListCmd.MarkFlagRequired("id")
	updateListCmd.MarkFlagsOneRequired("title", "slug")

	// delete-list
	deleteListCmd.Flags().Int64Var(&deleteListID, "id", 0, "List id (required)")
	deleteListCmd.MarkFlagRequired("id")

	// Register commands
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(getContactCmd)
	RootCmd.AddCommand(createContactCmd)
	RootCmd.AddCommand(deleteContactCmd)
	RootCmd.AddCommand(updateContactTagsCmd)
	RootCmd.AddCommand(updateContactListsCmd)
	RootCmd.AddCommand(getTagsCmd)
	RootCmd.AddCommand(createTagCmd)
	RootCmd.AddCommand(deleteTagCmd)
	RootCmd.AddCommand(getListsCmd)
	RootCmd.AddCommand(createListCmd)
	RootCmd.AddCommand(updateListCmd)
	RootCmd.AddCommand(deleteListCmd)
}
