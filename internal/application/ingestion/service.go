package ingestion

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"raisserver/internal/apperrors"
	"raisserver/internal/config"
	"raisserver/internal/domain/mapping"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/domain/schema"
	"raisserver/internal/domain/sheet"
	"raisserver/internal/domain/transform"
	"raisserver/internal/domain/validation"
	"raisserver/internal/infrastructure/archive"
	"raisserver/internal/infrastructure/monitoring"
)

// Стадии конвейера в порядке выполнения
const (
	stageRead      = "read"
	stageClassify  = "classify"
	stageMap       = "map"
	stageTransform = "transform"
	stageValidate  = "validate"
	stagePersist   = "persist"
)

const pipelineStageCount = 6

// auditWriteTimeout бюджет на учетную запись после истечения контекста файла
const auditWriteTimeout = 10 * time.Second

// Разрешенные расширения файлов отчетов
var allowedExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
}

// Service координирует конвейер загрузки: прием, дедупликация, фоновая
// обработка файлов по стадиям и фиксация итогов в журнале
type Service struct {
	cfg *config.Config

	reader     *sheet.Reader
	classifier *schema.Classifier
	mapper     *mapping.Mapper
	validator  *validation.Validator

	sessions  repositories.UploadSessionRepository
	uploads   repositories.UploadLogRepository
	summaries repositories.SummaryRepository
	defects   repositories.DefectRepository
	rollups   repositories.RollupRepository

	store   archive.BlobStore
	metrics *monitoring.PipelineMetrics
}

// NewService создает сервис загрузки; компоненты конвейера строятся из конфигурации
func NewService(
	cfg *config.Config,
	sessions repositories.UploadSessionRepository,
	uploads repositories.UploadLogRepository,
	summaries repositories.SummaryRepository,
	defects repositories.DefectRepository,
	rollups repositories.RollupRepository,
	store archive.BlobStore,
	metrics *monitoring.PipelineMetrics,
) (*Service, error) {
	registry, err := schema.LoadRegistry(cfg.SignatureRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature registry: %w", err)
	}

	return &Service{
		cfg: cfg,
		reader: sheet.NewReader(sheet.ReaderConfig{
			MaxRowsPerFile:   cfg.MaxRowsPerFile,
			HeaderScanRows:   cfg.HeaderScanRows,
			HeaderScoreFloor: cfg.HeaderScoreFloor,
		}),
		classifier: schema.NewClassifier(registry, schema.ClassifierConfig{
			ConfidenceFloor: cfg.ClassificationFloor,
		}),
		mapper:    mapping.NewMapper(),
		validator: validation.NewValidator(),
		sessions:  sessions,
		uploads:   uploads,
		summaries: summaries,
		defects:   defects,
		rollups:   rollups,
		store:     store,
		metrics:   metrics,
	}, nil
}

// filePlan решение по одному файлу запроса после дедупликации
type filePlan struct {
	input    FileInput
	hash     string
	uploadID string
	fresh    bool
}

// CreateSession принимает пакет файлов: проверяет лимиты, отсекает повторную
// загрузку тех же байт по хешу содержимого, создает сессию и журнальные записи,
// архивирует оригиналы. Возвращает квитанцию и задание для фоновой обработки;
// задание nil, когда все файлы оказались дубликатами
func (s *Service) CreateSession(ctx context.Context, files []FileInput) (*SessionReceipt, *Job, error) {
	if len(files) == 0 {
		return nil, nil, apperrors.NewValidationError("запрос не содержит файлов", nil)
	}
	if len(files) > s.cfg.MaxUploadFiles {
		return nil, nil, apperrors.NewValidationError(
			fmt.Sprintf("слишком много файлов: %d (лимит %d)", len(files), s.cfg.MaxUploadFiles), nil)
	}

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if _, ok := allowedExtensions[ext]; !ok {
			return nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("недопустимое расширение файла %s (поддерживаются .xlsx и .xls)", f.Name), nil)
		}
		if len(f.Data) == 0 {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("файл %s пуст", f.Name), nil)
		}
		if int64(len(f.Data)) > s.cfg.MaxFileSizeBytes {
			return nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("файл %s превышает лимит размера %d байт", f.Name, s.cfg.MaxFileSizeBytes), nil)
		}
	}

	sessionUUID := uuid.New().String()
	now := time.Now().UTC()

	// Дедупликация до разбора: известный хеш возвращает идентификатор первой загрузки
	plans := make([]filePlan, 0, len(files))
	seen := make(map[string]string)
	freshCount := 0

	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		hash := hex.EncodeToString(sum[:])

		if uploadID, ok := seen[hash]; ok {
			plans = append(plans, filePlan{input: f, hash: hash, uploadID: uploadID})
			continue
		}

		existing, err := s.uploads.GetByHash(ctx, hash)
		if err != nil {
			return nil, nil, apperrors.NewInternalError("failed to check file hash", err)
		}
		if existing != nil {
			seen[hash] = existing.UUID
			plans = append(plans, filePlan{input: f, hash: hash, uploadID: existing.UUID})
			continue
		}

		logUUID := uuid.New().String()
		seen[hash] = logUUID
		plans = append(plans, filePlan{input: f, hash: hash, uploadID: logUUID, fresh: true})
		freshCount++
	}

	session := &repositories.UploadSession{
		UUID:       sessionUUID,
		Status:     repositories.StatusPending,
		FilesTotal: freshCount,
		StartedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, apperrors.NewInternalError("failed to create upload session", err)
	}

	receipt := &SessionReceipt{SessionUUID: sessionUUID}
	job := &Job{SessionUUID: sessionUUID}

	for _, plan := range plans {
		if !plan.fresh {
			receipt.Files = append(receipt.Files, FileReceipt{
				FileName: plan.input.Name,
				UploadID: plan.uploadID,
				Exists:   true,
			})
			continue
		}

		logEntry := &repositories.UploadLog{
			UUID:          plan.uploadID,
			SessionUUID:   sessionUUID,
			FileName:      plan.input.Name,
			FileSizeBytes: int64(len(plan.input.Data)),
			FileHash:      plan.hash,
			Status:        repositories.StatusPending,
			StartedAt:     now,
		}
		if err := s.uploads.Create(ctx, logEntry); err != nil {
			// Гонка двух одновременных загрузок одних байт: уникальность хеша
			// в БД выигрывает у проверки выше
			if existing, lookupErr := s.uploads.GetByHash(ctx, plan.hash); lookupErr == nil && existing != nil {
				return nil, nil, apperrors.NewDuplicateFileError(plan.input.Name, existing.UUID)
			}
			return nil, nil, apperrors.NewInternalError("failed to create upload log", err)
		}

		s.archiveOriginal(ctx, plan)

		receipt.Files = append(receipt.Files, FileReceipt{
			FileName: plan.input.Name,
			UploadID: plan.uploadID,
		})
		job.Files = append(job.Files, FileJob{
			LogUUID:  plan.uploadID,
			FileName: plan.input.Name,
			Hash:     plan.hash,
			Data:     plan.input.Data,
		})
	}

	if len(job.Files) == 0 {
		// Все файлы уже известны: сессия завершается сразу
		if err := s.sessions.MarkStatus(ctx, sessionUUID, repositories.StatusCompleted, ""); err != nil {
			log.Printf("[Pipeline] Failed to complete duplicate-only session %s: %v", sessionUUID, err)
		}
		return receipt, nil, nil
	}

	log.Printf("[Pipeline] Session %s accepted: %d new of %d files", sessionUUID, len(job.Files), len(files))
	return receipt, job, nil
}

// archiveOriginal сохраняет оригинальные байты файла под хешем содержимого.
// Сбой архива не прерывает прием: журнал и конвейер важнее копии
func (s *Service) archiveOriginal(ctx context.Context, plan filePlan) {
	if s.store == nil {
		return
	}
	_, err := s.store.Save(ctx, plan.hash, bytes.NewReader(plan.input.Data), archive.SaveOptions{
		ContentType: contentTypeFor(plan.input.Name),
		FileName:    plan.input.Name,
	})
	if err != nil {
		log.Printf("[Pipeline] Failed to archive %s: %v", plan.input.Name, err)
	}
}

// ProcessSession выполняет конвейер по всем файлам задания.
// Вызывается воркером; сбои фиксируются в сессии и журнале, не возвращаются
func (s *Service) ProcessSession(ctx context.Context, job *Job) {
	if job == nil || len(job.Files) == 0 {
		return
	}

	s.metrics.UploadStarted()
	defer s.metrics.UploadFinished()

	// Отмена до старта предотвращает обработку целиком
	if s.cancelRequested(ctx, job.SessionUUID) {
		s.abortSession(ctx, job, 0, "cancelled before processing started")
		return
	}

	if err := s.sessions.MarkStatus(ctx, job.SessionUUID, repositories.StatusProcessing, ""); err != nil {
		log.Printf("[Pipeline] Failed to mark session %s processing: %v", job.SessionUUID, err)
	}

	vctx := validation.NewContext()
	total := len(job.Files)
	statuses := make([]string, 0, total)
	lastLogUUID := ""

	for i, f := range job.Files {
		if s.cancelRequested(ctx, job.SessionUUID) {
			s.abortSession(ctx, job, i, "cancelled by user")
			return
		}

		fileCtx, cancel := context.WithTimeout(ctx, s.cfg.ProcessingTimeout)
		status := s.processFile(fileCtx, job.SessionUUID, f, vctx, i, total)
		cancel()

		statuses = append(statuses, status)
		lastLogUUID = f.LogUUID
		s.bumpFilesDone(ctx, job.SessionUUID, i+1, total)
	}

	// Межфайловая сверка возможна только после всех файлов; ее замечания
	// дописываются в журнал последнего файла сессии
	if extra := vctx.Reconcile(); len(extra) > 0 && lastLogUUID != "" {
		s.appendFindings(ctx, lastLogUUID, extra)
	}

	final := sessionStatusFrom(statuses)
	message := ""
	if final == repositories.StatusFailed {
		message = "no file produced valid records"
	}
	if err := s.sessions.MarkStatus(ctx, job.SessionUUID, final, message); err != nil {
		log.Printf("[Pipeline] Failed to finalize session %s: %v", job.SessionUUID, err)
	}
	if err := s.sessions.UpdateProgress(ctx, job.SessionUUID, 1.0, "done", ""); err != nil {
		log.Printf("[Pipeline] Failed to update final progress for %s: %v", job.SessionUUID, err)
	}
	s.metrics.IncUpload(final)
	log.Printf("[Pipeline] Session %s finished: %s", job.SessionUUID, final)

	// Отложенное обновление месячных сводов: сбой здесь никогда не валит загрузку
	if refreshed, err := s.rollups.RefreshDirty(ctx); err != nil {
		log.Printf("[Pipeline] Rollup refresh failed after session %s: %v", job.SessionUUID, err)
	} else if refreshed > 0 {
		log.Printf("[Pipeline] Refreshed %d rollup months after session %s", refreshed, job.SessionUUID)
	}
}

// AbortSession помечает сессию и все ее файлы failed без обработки.
// Вызывается, когда принятое задание не удалось поставить в очередь
func (s *Service) AbortSession(ctx context.Context, job *Job, reason string) {
	if job == nil {
		return
	}
	s.abortSession(ctx, job, 0, reason)
}

// processFile прогоняет один файл через стадии конвейера.
// Возвращает итоговый статус журнальной записи
func (s *Service) processFile(ctx context.Context, sessionUUID string, f FileJob, vctx *validation.Context, idx, total int) string {
	logEntry, err := s.uploads.GetByUUID(ctx, f.LogUUID)
	if err != nil {
		// Контекст файла мог истечь до первого чтения; след фиксируется по UUID
		logEntry = &repositories.UploadLog{UUID: f.LogUUID, SessionUUID: sessionUUID, FileName: f.FileName}
		if ctx.Err() != nil {
			return s.failFile(logEntry, nil, schema.TypeUnknown, "", "processing timed out", ctx.Err())
		}
		return s.failFile(logEntry, nil, schema.TypeUnknown, "", "failed to load upload log", err)
	}

	logEntry.Status = repositories.StatusProcessing
	logEntry.StartedAt = time.Now().UTC()
	if err := s.uploads.Update(ctx, logEntry); err != nil {
		log.Printf("[Pipeline] Failed to mark upload %s processing: %v", f.LogUUID, err)
	}

	progress := func(stageIdx int, stage string) {
		p := (float64(idx) + float64(stageIdx)/pipelineStageCount) / float64(total)
		if err := s.sessions.UpdateProgress(ctx, sessionUUID, p, stage, f.FileName); err != nil {
			log.Printf("[Pipeline] Failed to update progress for %s: %v", sessionUUID, err)
		}
	}

	var findings []repositories.Finding

	// Стадия 1: чтение книги
	progress(0, stageRead)
	start := time.Now()
	wb, readFindings, err := s.reader.ReadWorkbook(f.FileName, f.Data)
	s.metrics.ObserveStageDuration(stageRead, time.Since(start))
	findings = append(findings, readFindings...)
	if err != nil {
		return s.failFile(logEntry, findings, schema.TypeUnknown,
			apperrors.CodeParseError, "file is not a readable spreadsheet", err)
	}

	if status, stop := s.checkpoint(ctx, sessionUUID, logEntry, findings, schema.TypeUnknown); stop {
		return status
	}

	// Стадия 2: классификация
	progress(1, stageClassify)
	start = time.Now()
	cls, clsFindings, err := s.classifier.Classify(f.FileName, wb.Sheets)
	s.metrics.ObserveStageDuration(stageClassify, time.Since(start))
	findings = append(findings, clsFindings...)
	logEntry.DetectedType = cls.FileType
	logEntry.Confidence = cls.Confidence
	if err != nil {
		return s.failFile(logEntry, findings, cls.FileType,
			apperrors.CodeClassificationError, "file type not recognized with sufficient confidence", err)
	}

	if status, stop := s.checkpoint(ctx, sessionUUID, logEntry, findings, cls.FileType); stop {
		return status
	}

	// Стадия 3: сопоставление колонок
	progress(2, stageMap)
	start = time.Now()
	agg := transform.NewAggregator(cls)
	for _, rs := range wb.Sheets {
		cm, mapFindings := s.mapper.MapSheet(rs)
		findings = append(findings, mapFindings...)
		findings = append(findings, agg.AddSheet(rs, cm)...)
	}
	s.metrics.ObserveStageDuration(stageMap, time.Since(start))

	if status, stop := s.checkpoint(ctx, sessionUUID, logEntry, findings, cls.FileType); stop {
		return status
	}

	// Стадия 4: нормализация и свертка
	progress(3, stageTransform)
	start = time.Now()
	batch, aggFindings := agg.Finalize()
	findings = append(findings, aggFindings...)
	s.metrics.ObserveStageDuration(stageTransform, time.Since(start))

	if status, stop := s.checkpoint(ctx, sessionUUID, logEntry, findings, cls.FileType); stop {
		return status
	}

	// Стадия 5: проверка
	progress(4, stageValidate)
	start = time.Now()
	res := s.validator.ValidateBatch(batch, vctx)
	findings = append(findings, res.Findings...)
	s.metrics.ObserveStageDuration(stageValidate, time.Since(start))

	if status, stop := s.checkpoint(ctx, sessionUUID, logEntry, findings, cls.FileType); stop {
		return status
	}

	// Стадия 6: запись
	progress(5, stagePersist)
	start = time.Now()
	persistErr := s.persistBatch(ctx, logEntry.UUID, res)
	s.metrics.ObserveStageDuration(stagePersist, time.Since(start))
	if persistErr != nil {
		return s.failFile(logEntry, findings, cls.FileType,
			apperrors.CodeInsertError, "failed to persist normalized records", persistErr)
	}

	if !batch.IsEmpty() {
		if err := s.rollups.MarkDirty(ctx, batch.Months()); err != nil {
			log.Printf("[Pipeline] Failed to mark rollup months dirty: %v", err)
		}
	}

	return s.finishFile(logEntry, findings, cls.FileType, batch, res)
}

// checkpoint проверяет таймаут файла и флаг отмены сессии между стадиями
func (s *Service) checkpoint(ctx context.Context, sessionUUID string, logEntry *repositories.UploadLog, findings []repositories.Finding, fileType string) (string, bool) {
	if err := ctx.Err(); err != nil {
		return s.failFile(logEntry, findings, fileType, "", "processing timed out", err), true
	}
	if s.cancelRequested(ctx, sessionUUID) {
		return s.failFile(logEntry, findings, fileType, "", "cancelled by user", repositories.ErrSessionCancelled), true
	}
	return "", false
}

// persistBatch записывает принятые записи: сводки по естественному ключу,
// факты дефектов пакетом
func (s *Service) persistBatch(ctx context.Context, uploadUUID string, res *validation.Result) error {
	for i := range res.Production {
		p := res.Production[i]
		p.UploadUUID = uploadUUID
		if err := s.summaries.UpsertProduction(ctx, &p); err != nil {
			return fmt.Errorf("failed to upsert production summary: %w", err)
		}
	}

	for i := range res.Inspections {
		ins := res.Inspections[i]
		ins.UploadUUID = uploadUUID
		if err := s.summaries.UpsertStageInspection(ctx, &ins); err != nil {
			return fmt.Errorf("failed to upsert stage inspection summary: %w", err)
		}
	}

	if len(res.Defects) > 0 {
		occurrences := make([]repositories.DefectOccurrence, len(res.Defects))
		copy(occurrences, res.Defects)
		for i := range occurrences {
			occurrences[i].UploadUUID = uploadUUID
		}
		if err := s.defects.BatchInsert(ctx, occurrences); err != nil {
			return fmt.Errorf("failed to insert defect occurrences: %w", err)
		}
	}

	return nil
}

// failFile завершает журнальную запись со статусом failed.
// Учетная запись пишется на свежем контексте: таймаут файла не должен
// терять аудиторский след
func (s *Service) failFile(logEntry *repositories.UploadLog, findings []repositories.Finding, fileType, errCode, message string, cause error) string {
	if errCode != "" {
		findings = append(findings, repositories.Finding{
			Severity: repositories.SeverityError,
			Code:     errCode,
			Message:  message,
			File:     logEntry.FileName,
		})
	}

	bctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	logEntry.Status = repositories.StatusFailed
	logEntry.ErrorMessage = message
	logEntry.FindingsJSON = marshalFindings(findings)
	logEntry.CompletedAt = &now
	if err := s.uploads.Update(bctx, logEntry); err != nil {
		log.Printf("[Pipeline] Failed to record failure for upload %s: %v", logEntry.UUID, err)
	}

	if cause != nil {
		log.Printf("[Pipeline] File %s failed: %s: %v", logEntry.FileName, message, cause)
	} else {
		log.Printf("[Pipeline] File %s failed: %s", logEntry.FileName, message)
	}
	s.metrics.IncFileProcessed(fileType, repositories.StatusFailed)
	return repositories.StatusFailed
}

// finishFile подводит итог файла: статус определяется принятыми записями
// и наличием замечаний уровня error
func (s *Service) finishFile(logEntry *repositories.UploadLog, findings []repositories.Finding, fileType string, batch *transform.Batch, res *validation.Result) string {
	status := repositories.StatusCompleted
	message := ""
	switch {
	case res.RecordsValid == 0:
		status = repositories.StatusFailed
		message = "no valid records in file"
	case res.ErrorCount() > 0:
		status = repositories.StatusPartial
	}

	bctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	logEntry.Status = status
	logEntry.RowsTotal = batch.RowsProcessed + batch.RowsSkipped
	logEntry.RecordsValid = res.RecordsValid
	logEntry.RecordsInvalid = res.RecordsInvalid
	logEntry.DefectCount = len(res.Defects)
	logEntry.FindingsJSON = marshalFindings(findings)
	logEntry.ErrorMessage = message
	logEntry.CompletedAt = &now
	if err := s.uploads.Update(bctx, logEntry); err != nil {
		log.Printf("[Pipeline] Failed to finalize upload %s: %v", logEntry.UUID, err)
	}

	s.metrics.AddRowsAccepted(res.RecordsValid)
	s.metrics.AddRowsRejected(res.RecordsInvalid)
	s.metrics.AddDefectOccurrences(len(res.Defects))
	s.metrics.IncFileProcessed(fileType, status)

	log.Printf("[Pipeline] File %s: %s (%d valid, %d invalid, %d defects)",
		logEntry.FileName, status, res.RecordsValid, res.RecordsInvalid, len(res.Defects))
	return status
}

// cancelRequested читает флаг отмены; ошибка чтения трактуется как отсутствие отмены
func (s *Service) cancelRequested(ctx context.Context, sessionUUID string) bool {
	cancelled, err := s.sessions.IsCancelRequested(ctx, sessionUUID)
	if err != nil {
		log.Printf("[Pipeline] Failed to read cancel flag for %s: %v", sessionUUID, err)
		return false
	}
	return cancelled
}

// abortSession закрывает сессию по отмене: файлы начиная с from помечаются
// failed, уже записанные пакеты не откатываются
func (s *Service) abortSession(ctx context.Context, job *Job, from int, reason string) {
	now := time.Now().UTC()
	for _, f := range job.Files[from:] {
		logEntry, err := s.uploads.GetByUUID(ctx, f.LogUUID)
		if err != nil {
			log.Printf("[Pipeline] Failed to load upload log %s: %v", f.LogUUID, err)
			continue
		}
		logEntry.Status = repositories.StatusFailed
		logEntry.ErrorMessage = reason
		logEntry.CompletedAt = &now
		if err := s.uploads.Update(ctx, logEntry); err != nil {
			log.Printf("[Pipeline] Failed to mark upload %s cancelled: %v", f.LogUUID, err)
		}
	}

	if err := s.sessions.MarkStatus(ctx, job.SessionUUID, repositories.StatusFailed, reason); err != nil {
		log.Printf("[Pipeline] Failed to mark session %s failed: %v", job.SessionUUID, err)
	}
	s.metrics.IncUpload(repositories.StatusFailed)
	log.Printf("[Pipeline] Session %s aborted: %s", job.SessionUUID, reason)
}

// bumpFilesDone фиксирует завершение файла в счетчике и прогрессе сессии
func (s *Service) bumpFilesDone(ctx context.Context, sessionUUID string, done, total int) {
	session, err := s.sessions.GetByUUID(ctx, sessionUUID)
	if err != nil {
		log.Printf("[Pipeline] Failed to load session %s: %v", sessionUUID, err)
		return
	}
	session.FilesDone = done
	session.Progress = float64(done) / float64(total)
	if err := s.sessions.Update(ctx, session); err != nil {
		log.Printf("[Pipeline] Failed to update session %s: %v", sessionUUID, err)
	}
}

// appendFindings дописывает замечания к журнальной записи файла
func (s *Service) appendFindings(ctx context.Context, logUUID string, extra []repositories.Finding) {
	logEntry, err := s.uploads.GetByUUID(ctx, logUUID)
	if err != nil {
		log.Printf("[Pipeline] Failed to load upload log %s: %v", logUUID, err)
		return
	}

	findings := unmarshalFindings(logEntry.FindingsJSON)
	findings = append(findings, extra...)
	logEntry.FindingsJSON = marshalFindings(findings)
	if err := s.uploads.Update(ctx, logEntry); err != nil {
		log.Printf("[Pipeline] Failed to append findings to upload %s: %v", logUUID, err)
	}
}

// sessionStatusFrom выводит статус сессии из статусов ее файлов
func sessionStatusFrom(statuses []string) string {
	completed, failed := 0, 0
	for _, st := range statuses {
		switch st {
		case repositories.StatusCompleted:
			completed++
		case repositories.StatusFailed:
			failed++
		}
	}

	switch {
	case failed == len(statuses):
		return repositories.StatusFailed
	case completed == len(statuses):
		return repositories.StatusCompleted
	default:
		return repositories.StatusPartial
	}
}

func marshalFindings(findings []repositories.Finding) string {
	if len(findings) == 0 {
		return ""
	}
	data, err := json.Marshal(findings)
	if err != nil {
		log.Printf("[Pipeline] Failed to marshal findings: %v", err)
		return ""
	}
	return string(data)
}

func unmarshalFindings(raw string) []repositories.Finding {
	if raw == "" {
		return nil
	}
	var findings []repositories.Finding
	if err := json.Unmarshal([]byte(raw), &findings); err != nil {
		log.Printf("[Pipeline] Failed to unmarshal findings: %v", err)
		return nil
	}
	return findings
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
