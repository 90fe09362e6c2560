package station

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var db *BoltDB

	BeforeEach(func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "station.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("AddUser", func() {
		It("should assign increasing ids", func() {
			alice, err := db.AddUser("alice")
			Expect(err).NotTo(HaveOccurred())
			bob, err := db.AddUser("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(bob.ID).To(BeNumerically(">", alice.ID))
		})

		It("should set the creation time", func() {
			user, err := db.AddUser("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.CreatedAt).NotTo(BeZero())
		})

		When("the name is already taken", func() {
			BeforeEach(func() {
				_, err := db.AddUser("alice")
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return ErrUserExists", func() {
				_, err := db.AddUser("alice")
				Expect(err).To(MatchError(ErrUserExists))
			})

			It("should match names case-insensitively", func() {
				_, err := db.AddUser("ALICE")
				Expect(err).To(MatchError(ErrUserExists))
			})
		})
	})

	Describe("ListUsers", func() {
		When("no users exist", func() {
			It("should return an empty list", func() {
				users, err := db.ListUsers()
				Expect(err).NotTo(HaveOccurred())
				Expect(users).To(BeEmpty())
			})
		})

		When("users exist", func() {
			BeforeEach(func() {
				for _, name := range []string{"charlie", "alice", "Bob"} {
					_, err := db.AddUser(name)
					Expect(err).NotTo(HaveOccurred())
				}
			})

			It("should return them sorted by name", func() {
				users, err := db.ListUsers()
				Expect(err).NotTo(HaveOccurred())
				names := make([]string, len(users))
				for i, u := range users {
					names[i] = u.Name
				}
				Expect(names).To(Equal([]string{"alice", "Bob", "charlie"}))
			})
		})
	})

	Describe("DeleteUser", func() {
		When("the user exists", func() {
			var id uint64

			BeforeEach(func() {
				user, err := db.AddUser("alice")
				Expect(err).NotTo(HaveOccurred())
				id = user.ID
			})

			It("should report the deletion", func() {
				deleted, err := db.DeleteUser(id)
				Expect(err).NotTo(HaveOccurred())
				Expect(deleted).To(BeTrue())
			})

			It("should remove the user", func() {
				_, err := db.DeleteUser(id)
				Expect(err).NotTo(HaveOccurred())
				users, err := db.ListUsers()
				Expect(err).NotTo(HaveOccurred())
				Expect(users).To(BeEmpty())
			})

			It("should free the name for reuse", func() {
				_, err := db.DeleteUser(id)
				Expect(err).NotTo(HaveOccurred())
				_, err = db.AddUser("alice")
				Expect(err).NotTo(HaveOccurred())
			})
		})

		When("the user does not exist", func() {
			It("should report nothing deleted", func() {
				deleted, err := db.DeleteUser(42)
				Expect(err).NotTo(HaveOccurred())
				Expect(deleted).To(BeFalse())
			})
		})
	})

	Describe("connection configuration", func() {
		When("nothing has been saved", func() {
			It("should return nil", func() {
				cfg, err := db.GetConnection()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).To(BeNil())
			})
		})

		When("a configuration is saved", func() {
			BeforeEach(func() {
				Expect(db.SaveConnection(&ConnectionConfig{
					Server:   "db.example.com",
					Database: "Quotations",
					Username: "scanner",
					Password: "s3cret",
				})).To(Succeed())
			})

			It("should round-trip all fields", func() {
				cfg, err := db.GetConnection()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server).To(Equal("db.example.com"))
				Expect(cfg.Database).To(Equal("Quotations"))
				Expect(cfg.Username).To(Equal("scanner"))
				Expect(cfg.Password).To(Equal("s3cret"))
			})

			It("should overwrite on a second save", func() {
				Expect(db.SaveConnection(&ConnectionConfig{
					Server:   "other.example.com",
					Database: "Quotations",
					Username: "scanner",
					Password: "other",
				})).To(Succeed())

				cfg, err := db.GetConnection()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server).To(Equal("other.example.com"))
				Expect(cfg.Password).To(Equal("other"))
			})
		})
	})
})

var _ = Describe("ConnectionConfig", func() {
	Describe("View", func() {
		It("should never carry the password", func() {
			cfg := &ConnectionConfig{
				Server:   "db.example.com",
				Database: "Quotations",
				Username: "scanner",
				Password: "s3cret",
			}
			view := cfg.View()
			Expect(view.HasPassword).To(BeTrue())
			Expect(view).To(Equal(ConnectionView{
				Server:      "db.example.com",
				Database:    "Quotations",
				Username:    "scanner",
				HasPassword: true,
			}))
		})

		It("should report a missing password", func() {
			cfg := &ConnectionConfig{Server: "db", Database: "q", Username: "u"}
			Expect(cfg.View().HasPassword).To(BeFalse())
		})
	})
})
