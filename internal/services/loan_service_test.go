package services

import (
	"testing"
	"time"

	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/testutil"
)

func TestCreateLoan(t *testing.T) {
	t.Run("explicit_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Car loan",
			InitialAmount: mustAmount(t, "5000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		if loan.CategoryID != cat.ID {
			t.Errorf("expected category %s, got %s", cat.ID, loan.CategoryID)
		}
		if loan.Status != models.LoanStatusActive {
			t.Errorf("expected active loan, got %s", loan.Status)
		}
	})

	t.Run("records_disbursement_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Car loan",
			InitialAmount: mustAmount(t, "5000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		var tx models.Transaction
		if err := db.Where("loan_id = ?", loan.ID).First(&tx).Error; err != nil {
			t.Fatalf("expected a disbursement transaction: %v", err)
		}
		if !tx.IsLoan {
			t.Error("disbursement should be marked as a loan transaction")
		}
		// Borrowed money arrives as income.
		if tx.Type != models.TransactionTypeIncome {
			t.Errorf("expected income disbursement, got %s", tx.Type)
		}
		testutil.AssertDecimalEqual(t, tx.Amount, "5000")
		if tx.Description != "Préstamo: Car loan" {
			t.Errorf("unexpected disbursement description %q", tx.Description)
		}
	})

	t.Run("given_loan_disburses_as_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Lent to Ana",
			InitialAmount: mustAmount(t, "300"),
			Type:          models.LoanTypeGiven,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		var tx models.Transaction
		if err := db.Where("loan_id = ?", loan.ID).First(&tx).Error; err != nil {
			t.Fatalf("expected a disbursement transaction: %v", err)
		}
		if tx.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense disbursement, got %s", tx.Type)
		}
	})

	t.Run("creates_category_named_after_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Motorcycle",
			InitialAmount: mustAmount(t, "2000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
		})
		testutil.AssertNoError(t, err)

		var cat models.Category
		if err := db.First(&cat, "id = ?", loan.CategoryID).Error; err != nil {
			t.Fatalf("expected backing category: %v", err)
		}
		if cat.Name != "Motorcycle" {
			t.Errorf("expected category named Motorcycle, got %s", cat.Name)
		}
		if cat.Type != models.CategoryTypeExpense {
			t.Errorf("expected expense category, got %s", cat.Type)
		}
		if cat.Color != "#607D8B" {
			t.Errorf("expected color #607D8B, got %s", cat.Color)
		}
	})

	t.Run("reuses_well_known_loan_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)

		existing := &models.Category{UserID: user.ID, Name: "Loans", Type: models.CategoryTypeExpense}
		if err := db.Create(existing).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Bank loan",
			InitialAmount: mustAmount(t, "2000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
		})
		testutil.AssertNoError(t, err)

		if loan.CategoryID != existing.ID {
			t.Errorf("expected reuse of category %s, got %s", existing.ID, loan.CategoryID)
		}
	})

	t.Run("category_backing_active_loan_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "First",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateLoan(user.ID, LoanInput{
			Name:          "Second",
			InitialAmount: mustAmount(t, "500"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertAppError(t, err, "LOAN_CATEGORY_IN_USE")
	})

	t.Run("category_free_after_finalize", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		first, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "First",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.FinalizeLoan(user.ID, first.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateLoan(user.ID, LoanInput{
			Name:          "Second",
			InitialAmount: mustAmount(t, "500"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)
	})
}

func TestLoanReconciliation(t *testing.T) {
	t.Run("payments_reduce_pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Borrowed",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		// Payments on a received loan are expenses in the loan category.
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 100)
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 50)

		details, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, details.PaidAmount, "150")
		testutil.AssertDecimalEqual(t, details.PendingAmount, "850")
		testutil.AssertDecimalEqual(t, details.InterestAmount, "0")
	})

	t.Run("overpayment_counts_as_interest", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Borrowed",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 1200)

		details, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, details.PaidAmount, "1200")
		testutil.AssertDecimalEqual(t, details.PendingAmount, "0")
		testutil.AssertDecimalEqual(t, details.InterestAmount, "200")
	})

	t.Run("loan_without_category_stays_underived", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		// No backing category means no ledger to reconcile against, so
		// nothing counts as paid or pending.
		loan := testutil.CreateTestLoan(t, db, user.ID, "", models.LoanTypeReceived, 500)
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 200)

		details, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, details.PaidAmount, "0")
		testutil.AssertDecimalEqual(t, details.PendingAmount, "0")
		testutil.AssertDecimalEqual(t, details.InterestAmount, "0")
	})

	t.Run("given_loan_counts_income_payments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Lent",
			InitialAmount: mustAmount(t, "400"),
			Type:          models.LoanTypeGiven,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		// Repayments of lent money arrive as income.
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeIncome, 150)
		// An unrelated expense must not count as a payment.
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 75)

		details, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, details.PaidAmount, "150")
		testutil.AssertDecimalEqual(t, details.PendingAmount, "250")
	})

	t.Run("disbursement_does_not_count_as_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Borrowed",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		details, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, details.PaidAmount, "0")
		testutil.AssertDecimalEqual(t, details.PendingAmount, "1000")
	})

	t.Run("read_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Borrowed",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 250)

		first, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)
		second, err := svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertNoError(t, err)

		if !first.PaidAmount.Equal(second.PaidAmount) || !first.PendingAmount.Equal(second.PendingAmount) {
			t.Error("repeated loan reads should return identical figures")
		}
	})
}

func TestGetUserLoans(t *testing.T) {
	t.Run("returns_user_loans_with_details", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)

		testutil.CreateTestLoan(t, db, user1.ID, cat1.ID, models.LoanTypeReceived, 1000)
		testutil.CreateTestLoan(t, db, user2.ID, cat2.ID, models.LoanTypeReceived, 2000)

		testutil.CreateTestTransaction(t, db, user1.ID, cat1.ID, models.TransactionTypeExpense, 100)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserLoans(user1.ID, page)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 loan, got %d", result.TotalItems)
		}
		testutil.AssertDecimalEqual(t, result.Data[0].PaidAmount, "100")
	})
}

func TestUpdateLoan(t *testing.T) {
	t.Run("syncs_disbursement_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Old name",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		name := "New name"
		amount := mustAmount(t, "1500")
		_, err = svc.UpdateLoan(user.ID, loan.ID, LoanUpdate{Name: &name, InitialAmount: &amount})
		testutil.AssertNoError(t, err)

		var tx models.Transaction
		if err := db.Where("loan_id = ?", loan.ID).First(&tx).Error; err != nil {
			t.Fatalf("expected disbursement transaction: %v", err)
		}
		testutil.AssertDecimalEqual(t, tx.Amount, "1500")
		if tx.Description != "Préstamo: New name" {
			t.Errorf("unexpected description %q", tx.Description)
		}
	})

	t.Run("rebind_to_busy_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "First",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat1.ID,
		})
		testutil.AssertNoError(t, err)

		second, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Second",
			InitialAmount: mustAmount(t, "500"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat2.ID,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateLoan(user.ID, second.ID, LoanUpdate{CategoryID: &cat1.ID})
		testutil.AssertAppError(t, err, "LOAN_CATEGORY_IN_USE")
	})
}

func TestDeleteLoan(t *testing.T) {
	t.Run("removes_linked_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Doomed",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteLoan(user.ID, loan.ID))

		_, err = svc.GetLoanByID(user.ID, loan.ID)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")

		var count int64
		if err := db.Model(&models.Transaction{}).Where("loan_id = ?", loan.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no loan transactions left, got %d", count)
		}
	})
}

func TestFinalizeLoan(t *testing.T) {
	t.Run("marks_paid_and_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		loan, err := svc.CreateLoan(user.ID, LoanInput{
			Name:          "Done",
			InitialAmount: mustAmount(t, "1000"),
			Type:          models.LoanTypeReceived,
			StartDate:     time.Now(),
			CategoryID:    &cat.ID,
		})
		testutil.AssertNoError(t, err)

		finalized, err := svc.FinalizeLoan(user.ID, loan.ID)
		testutil.AssertNoError(t, err)
		if finalized.Status != models.LoanStatusPaid {
			t.Errorf("expected paid status, got %s", finalized.Status)
		}

		again, err := svc.FinalizeLoan(user.ID, loan.ID)
		testutil.AssertNoError(t, err)
		if again.Status != models.LoanStatusPaid {
			t.Errorf("expected paid status, got %s", again.Status)
		}
	})
}
